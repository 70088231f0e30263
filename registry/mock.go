package registry

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/attestkit/attestation-service-backend/interfaces"
)

// MockRegistry mocks the AttestationRegistry interface
type MockRegistry struct {
	mock.Mock
}

// GetAttestation mocks the GetAttestation method
func (m *MockRegistry) GetAttestation(ctx context.Context, uid interfaces.UID) (*interfaces.OnchainAttestation, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.OnchainAttestation), args.Error(1)
}

// GetSchema mocks the GetSchema method
func (m *MockRegistry) GetSchema(ctx context.Context, uid interfaces.UID) (*interfaces.SchemaRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.SchemaRecord), args.Error(1)
}

// Attest mocks the Attest method
func (m *MockRegistry) Attest(ctx context.Context, req interfaces.AttestationRequest) (interfaces.UID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(interfaces.UID), args.Error(1)
}

// Revoke mocks the Revoke method
func (m *MockRegistry) Revoke(ctx context.Context, schemaUID, uid interfaces.UID) error {
	args := m.Called(ctx, schemaUID, uid)
	return args.Error(0)
}

// RegisterSchema mocks the RegisterSchema method
func (m *MockRegistry) RegisterSchema(ctx context.Context, definition string, resolver interfaces.Address, revocable bool) (interfaces.UID, error) {
	args := m.Called(ctx, definition, resolver, revocable)
	return args.Get(0).(interfaces.UID), args.Error(1)
}

// MockRegistryFactory mocks the RegistryFactory interface
type MockRegistryFactory struct {
	mock.Mock
}

// RegistryFor mocks the RegistryFor method
func (m *MockRegistryFactory) RegistryFor(attestationContract, schemaContract interfaces.Address) (interfaces.AttestationRegistry, error) {
	args := m.Called(attestationContract, schemaContract)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.AttestationRegistry), args.Error(1)
}
