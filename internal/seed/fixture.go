package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

// Fixture is the demo data loaded into the datastore and the catalog.
type Fixture struct {
	Events       []EventFixture       `yaml:"events" validate:"unique=ID,dive"`
	News         []NewsFixture        `yaml:"news" validate:"unique=ID,dive"`
	Discussions  []DiscussionFixture  `yaml:"discussions" validate:"unique=ID,dive"`
	Contributors []ContributorFixture `yaml:"contributors" validate:"unique=ID,dive"`
	Stats        *StatsFixture        `yaml:"stats" validate:"omitempty"`
	Catalog      []CatalogFixture     `yaml:"catalog" validate:"unique=ID,dive"`
}

// EventFixture seeds one event.
type EventFixture struct {
	ID                  string            `yaml:"id" validate:"required"`
	Title               string            `yaml:"title" validate:"required"`
	Description         string            `yaml:"description"`
	Category            string            `yaml:"category" validate:"omitempty,oneof=tournament challenge community seasonal"`
	Status              string            `yaml:"status" validate:"required,oneof=upcoming active completed cancelled"`
	StartDate           time.Time         `yaml:"start_date" validate:"required"`
	EndDate             time.Time         `yaml:"end_date" validate:"required,gtfield=StartDate"`
	MaxParticipants     int               `yaml:"max_participants" validate:"gte=0"`
	CurrentParticipants int               `yaml:"current_participants" validate:"gte=0,ltefield=MaxParticipants"`
	Rewards             []RewardFixture   `yaml:"rewards" validate:"dive"`
	Requirements        map[string]string `yaml:"requirements"`
}

// RewardFixture is one prize attached to an event.
type RewardFixture struct {
	Kind   string `yaml:"kind" validate:"required"`
	Amount int    `yaml:"amount" validate:"gt=0"`
	Label  string `yaml:"label"`
}

// NewsFixture seeds one news item. Published items need a publish time.
type NewsFixture struct {
	ID          string    `yaml:"id" validate:"required"`
	Title       string    `yaml:"title" validate:"required"`
	Content     string    `yaml:"content"`
	Category    string    `yaml:"category"`
	Priority    string    `yaml:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Published   bool      `yaml:"published"`
	PublishedAt time.Time `yaml:"published_at" validate:"required_if=Published true"`
}

// DiscussionFixture seeds one discussion.
type DiscussionFixture struct {
	ID           string    `yaml:"id" validate:"required"`
	Title        string    `yaml:"title" validate:"required"`
	Content      string    `yaml:"content"`
	AuthorID     string    `yaml:"author_id" validate:"required"`
	AuthorName   string    `yaml:"author_name" validate:"required"`
	AuthorAvatar string    `yaml:"author_avatar"`
	Replies      int       `yaml:"replies" validate:"gte=0"`
	Likes        int       `yaml:"likes" validate:"gte=0"`
	Views        int       `yaml:"views" validate:"gte=0"`
	Tags         []string  `yaml:"tags"`
	CreatedAt    time.Time `yaml:"created_at" validate:"required"`
	UpdatedAt    time.Time `yaml:"updated_at"`
	Hot          bool      `yaml:"hot"`
}

// ContributorFixture seeds one contributor.
type ContributorFixture struct {
	ID            string `yaml:"id" validate:"required"`
	Name          string `yaml:"name" validate:"required"`
	Avatar        string `yaml:"avatar"`
	Contributions int    `yaml:"contributions" validate:"gte=0"`
	Level         int    `yaml:"level" validate:"gte=0"`
	Specialty     string `yaml:"specialty"`
}

// StatsFixture seeds the community stats snapshot.
type StatsFixture struct {
	Members        int `yaml:"members" validate:"gte=0"`
	OnlineNow      int `yaml:"online_now" validate:"gte=0,ltefield=Members"`
	Discussions    int `yaml:"discussions" validate:"gte=0"`
	EventsThisWeek int `yaml:"events_this_week" validate:"gte=0"`
}

// CatalogFixture seeds one catalog entry.
type CatalogFixture struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	PriceCents  int64  `yaml:"price_cents" validate:"gte=0"`
	Currency    string `yaml:"currency" validate:"omitempty,len=3"`
	Active      bool   `yaml:"active"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DemoFixture returns the embedded demo fixture.
func DemoFixture() (Fixture, error) {
	return DecodeFixture(bytes.NewReader(demoFixture))
}

// LoadFixture reads a fixture file, or the embedded demo when path is empty.
func LoadFixture(path string) (Fixture, error) {
	if strings.TrimSpace(path) == "" {
		return DemoFixture()
	}
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return DecodeFixture(f)
}

// DecodeFixture parses and validates a YAML fixture. Unknown keys are
// rejected.
func DecodeFixture(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, errors.New("fixture is empty")
		}
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validate.Struct(fixture); err != nil {
		return Fixture{}, fmt.Errorf("validate fixture: %w", describeValidation(err))
	}
	return fixture, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
