package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

type testProviderConfig struct {
	url string
	key string
}

func (c testProviderConfig) GetIdentityProviderURL() string        { return c.url }
func (c testProviderConfig) GetIdentityProviderServiceKey() string { return c.key }
func (c testProviderConfig) IsIdentityProviderEnabled() bool       { return true }

func TestCreateIdentitySendsAdminRequest(t *testing.T) {
	identityID := uuid.New()
	var gotBody map[string]any
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    identityID.String(),
			"phone": "919876543210",
			"email": "jane@x.com",
		})
	}))
	defer server.Close()

	client := NewGoTrueClient(testProviderConfig{url: server.URL, key: "service-key"})
	ident, err := client.CreateIdentity(context.Background(), CreateIdentityParams{
		Phone:         "+919876543210",
		Email:         "jane@x.com",
		DisplayName:   "Dr. Jane Doe",
		PhoneVerified: true,
	})
	if err != nil {
		t.Fatalf("CreateIdentity returned error: %v", err)
	}

	if ident.ID != identityID {
		t.Fatalf("identity ID = %s, want %s", ident.ID, identityID)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("Authorization header = %q", gotAuth)
	}
	if gotBody["phone"] != "+919876543210" {
		t.Fatalf("phone = %v", gotBody["phone"])
	}
	if gotBody["phone_confirm"] != true {
		t.Fatal("expected phone_confirm to be true")
	}
	if gotBody["email_confirm"] != false {
		t.Fatal("expected email_confirm to be false")
	}
	meta, ok := gotBody["user_metadata"].(map[string]any)
	if !ok || meta["full_name"] != "Dr. Jane Doe" {
		t.Fatalf("user_metadata = %v", gotBody["user_metadata"])
	}
}

func TestCreateIdentitySurfacesProviderMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Phone number already registered"})
	}))
	defer server.Close()

	client := NewGoTrueClient(testProviderConfig{url: server.URL, key: "service-key"})
	_, err := client.CreateIdentity(context.Background(), CreateIdentityParams{Phone: "+919876543210"})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "Phone number already registered" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
}

func TestDeleteIdentityTreatsNotFoundAsDeleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewGoTrueClient(testProviderConfig{url: server.URL, key: "service-key"})
	if err := client.DeleteIdentity(context.Background(), uuid.New()); err != nil {
		t.Fatalf("DeleteIdentity returned error: %v", err)
	}
}

func TestListIdentitiesPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "3" || r.URL.Query().Get("per_page") != "100" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{
				{"id": uuid.New().String(), "phone": "919876543210", "email": "a@x.com"},
				{"id": uuid.New().String(), "phone": "919876543211", "email": "b@x.com"},
			},
		})
	}))
	defer server.Close()

	client := NewGoTrueClient(testProviderConfig{url: server.URL, key: "service-key"})
	identities, err := client.ListIdentities(context.Background(), 3, 100)
	if err != nil {
		t.Fatalf("ListIdentities returned error: %v", err)
	}
	if len(identities) != 2 {
		t.Fatalf("got %d identities, want 2", len(identities))
	}
	if identities[0].Phone != "919876543210" {
		t.Fatalf("phone = %q", identities[0].Phone)
	}
}
