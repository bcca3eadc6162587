// Package discovery centralizes service address conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceDatastore is the datastore gRPC service identity.
	ServiceDatastore = "datastore"
	// ServiceCatalog is the catalog HTTP service identity.
	ServiceCatalog = "catalog"
	// ServiceJaeger is the jaeger HTTP service identity.
	ServiceJaeger = "jaeger"
)

var grpcPorts = map[string]int{
	ServiceDatastore: 8090,
}

var httpPorts = map[string]int{
	ServiceCatalog: 8092,
	ServiceJaeger:  16686,
}

// DefaultGRPCAddr returns the canonical in-network gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the canonical in-network HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), strings.TrimSpace(service), httpPorts)
}

// LocalGRPCAddr returns the gRPC address of a service running on this host.
func LocalGRPCAddr(service string) string {
	return defaultAddr("localhost", strings.TrimSpace(service), grpcPorts)
}

// HTTPListenAddr returns the ":port" listen address for an HTTP service.
func HTTPListenAddr(service string) string {
	return defaultAddr("", strings.TrimSpace(service), httpPorts)
}

// OrDefaultGRPCAddr returns value when set, otherwise the service convention.
func OrDefaultGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultGRPCAddr(service)
}

// OrDefaultHTTPBaseURL returns value when set, otherwise http://<service-host:port>.
func OrDefaultHTTPBaseURL(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	addr := DefaultHTTPAddr(service)
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

func defaultAddr(host, service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return host + ":" + strconv.Itoa(port)
}
