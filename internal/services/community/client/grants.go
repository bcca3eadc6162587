package client

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"go.uber.org/zap"
)

// RedeemStarterPack claims the starter pack for the session email. A
// repeated claim reported by the store surfaces as
// STARTER_PACK_ALREADY_REDEEMED; any other store error as REMOTE_FAILURE.
func (c *Client) RedeemStarterPack(ctx context.Context, session domain.Session) (domain.Grant, Result) {
	ctx, span := c.tracer.Start(ctx, "community.RedeemStarterPack")
	defer span.End()

	grant, res := c.redeemStarterPack(ctx, session)
	markSpan(span, res)
	return grant, res
}

func (c *Client) redeemStarterPack(ctx context.Context, session domain.Session) (domain.Grant, Result) {
	if !session.Authenticated() {
		return domain.Grant{}, c.fail(apperrors.New(apperrors.CodeNotAuthenticated, "redeem starter pack: no authenticated user"))
	}
	email := strings.TrimSpace(session.Email)
	if email == "" {
		return domain.Grant{}, c.fail(apperrors.New(apperrors.CodeStarterPackEmail, "redeem starter pack: session has no email"))
	}
	if c.grants == nil {
		return domain.Grant{}, c.remoteFailure("redeem starter pack", errors.New("no grant store configured"))
	}

	grant, err := c.grants.RedeemStarterPack(ctx, session)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeStarterPackRedeemed) {
			c.logger.Info("starter pack already redeemed", zap.String("user_id", session.UserID))
			return domain.Grant{}, c.fail(apperrors.WrapWithMetadata(
				apperrors.CodeStarterPackRedeemed,
				"redeem starter pack: already redeemed",
				map[string]string{"Email": email},
				err,
			))
		}
		c.logger.Warn("redeem starter pack failed", zap.String("user_id", session.UserID), zap.Error(err))
		return domain.Grant{}, c.remoteFailure("redeem starter pack", err)
	}
	c.logger.Info("starter pack redeemed", zap.String("user_id", session.UserID), zap.String("grant_id", grant.ID))
	return grant, Result{}
}
