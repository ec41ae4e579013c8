package service

import (
	"context"
	"testing"

	"mentorspractice/internal/models"
	"mentorspractice/internal/storage"
)

func TestIdentitySaveAndLoad(t *testing.T) {
	store := storage.NewMemStore()
	svc := NewIdentityService(store, nil)
	ctx := context.Background()

	fieldErrs, err := svc.Save(ctx, "visitor-1", models.Identity{
		Name:  "Hira",
		Email: "hira@gmail.com",
		Phone: "01712345678",
	})
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if len(fieldErrs) != 0 {
		t.Fatalf("unexpected field errors: %v", fieldErrs)
	}

	identity, err := svc.Current("visitor-1")
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if identity == nil {
		t.Fatal("expected stored identity")
	}
	if identity.Name != "Hira" || identity.Phone != "01712345678" {
		t.Errorf("stored identity = %+v", identity)
	}
	if identity.UserID() != 1712345678 {
		t.Errorf("user ID = %d, want 1712345678", identity.UserID())
	}
}

func TestIdentityValidation(t *testing.T) {
	tests := []struct {
		name       string
		identity   models.Identity
		wantFields []string
	}{
		{
			name:       "missing name",
			identity:   models.Identity{Phone: "01712345678"},
			wantFields: []string{"name"},
		},
		{
			name:       "missing phone",
			identity:   models.Identity{Name: "Hira"},
			wantFields: []string{"phone"},
		},
		{
			name:       "short phone",
			identity:   models.Identity{Name: "Hira", Phone: "0171234"},
			wantFields: []string{"phone"},
		},
		{
			name:       "wrong phone prefix",
			identity:   models.Identity{Name: "Hira", Phone: "02712345678"},
			wantFields: []string{"phone"},
		},
		{
			name:       "bad email",
			identity:   models.Identity{Name: "Hira", Phone: "01712345678", Email: "not-an-email"},
			wantFields: []string{"email"},
		},
		{
			name:       "everything missing",
			identity:   models.Identity{},
			wantFields: []string{"name", "phone"},
		},
		{
			name:       "empty email allowed",
			identity:   models.Identity{Name: "Hira", Phone: "01712345678"},
			wantFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIdentityService(storage.NewMemStore(), nil)
			fieldErrs, err := svc.Save(context.Background(), "visitor-1", tt.identity)
			if err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			if len(fieldErrs) != len(tt.wantFields) {
				t.Fatalf("field errors = %v, want fields %v", fieldErrs, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if fieldErrs[i].Field != field {
					t.Errorf("field error %d = %q, want %q", i, fieldErrs[i].Field, field)
				}
			}
		})
	}
}

func TestIdentityImmutableOnceSaved(t *testing.T) {
	svc := NewIdentityService(storage.NewMemStore(), nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "visitor-1", models.Identity{Name: "Hira", Phone: "01712345678"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	fieldErrs, err := svc.Save(ctx, "visitor-1", models.Identity{Name: "Someone Else", Phone: "01999999999"})
	if err != nil || len(fieldErrs) != 0 {
		t.Fatalf("second Save() = %v, %v", fieldErrs, err)
	}

	identity, err := svc.Current("visitor-1")
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if identity.Name != "Hira" {
		t.Errorf("identity overwritten: %+v", identity)
	}
}

func TestIdentityScopedPerVisitor(t *testing.T) {
	svc := NewIdentityService(storage.NewMemStore(), nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "visitor-1", models.Identity{Name: "Hira", Phone: "01712345678"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	identity, err := svc.Current("visitor-2")
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if identity != nil {
		t.Errorf("visitor-2 should have no identity, got %+v", identity)
	}
}
