package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"mentorspractice/internal/models"
	"mentorspractice/internal/storage"
	"mentorspractice/internal/validation"
)

// IdentityService handles the one-time visitor identity capture. The record
// gates all practice operations and is immutable once stored; submitting the
// form again for the same visitor keeps the original record.
type IdentityService struct {
	store storage.Store
	email *EmailService
}

// NewIdentityService creates a new identity service. email may be a disabled
// EmailService; lead notifications then become no-ops.
func NewIdentityService(store storage.Store, email *EmailService) *IdentityService {
	return &IdentityService{
		store: store,
		email: email,
	}
}

// Current loads the visitor's stored identity, or nil when none exists yet.
func (s *IdentityService) Current(visitorID string) (*models.Identity, error) {
	raw, ok, err := s.store.Get(storage.VisitorKey(visitorID, storage.KeyIdentity))
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &identity, nil
}

// Save validates and persists the visitor's identity. Field-level problems
// come back as validation errors with a nil error; infrastructure failures
// come back as an error. If an identity already exists the stored record wins
// and the call is a no-op.
func (s *IdentityService) Save(ctx context.Context, visitorID string, identity models.Identity) ([]validation.ValidationError, error) {
	identity.Name = strings.TrimSpace(identity.Name)
	identity.Email = strings.TrimSpace(identity.Email)
	identity.Phone = strings.TrimSpace(identity.Phone)

	var fieldErrors []validation.ValidationError
	for _, err := range []error{
		validation.ValidateName(identity.Name),
		validation.ValidatePhone(identity.Phone),
		validation.ValidateEmail(identity.Email),
	} {
		if err != nil {
			if ve, ok := err.(validation.ValidationError); ok {
				fieldErrors = append(fieldErrors, ve)
			}
		}
	}
	if len(fieldErrors) > 0 {
		return fieldErrors, nil
	}

	existing, err := s.Current(visitorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	encoded, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := s.store.Set(storage.VisitorKey(visitorID, storage.KeyIdentity), string(encoded)); err != nil {
		return nil, fmt.Errorf("failed to save identity: %w", err)
	}

	// Lead notification is best-effort; a mail failure never blocks the save.
	if s.email != nil {
		if err := s.email.SendNewLeadEmail(ctx, identity); err != nil {
			log.Printf("Error sending lead notification: %v", err)
		}
	}

	return nil, nil
}
