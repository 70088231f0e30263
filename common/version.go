package common

// Version is the service build version, overridden at build time via
// -ldflags "-X github.com/attestkit/attestation-service-backend/common.Version=v1.2.3".
var Version = "dev"
