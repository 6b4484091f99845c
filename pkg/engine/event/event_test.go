package event

import (
	"encoding/json"
	"errors"
	"testing"
)

const writeEventJSON = `{
	"id": "evt-1",
	"topic": "/subscriptions/sub-1",
	"subject": "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Compute/virtualMachines/vm-1",
	"eventType": "Microsoft.Resources.ResourceWriteSuccess",
	"eventTime": "2024-03-01T20:30:00Z",
	"data": {
		"resourceUri": "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Compute/virtualMachines/vm-1",
		"operationName": "Microsoft.Compute/virtualMachines/write",
		"claims": {
			"name": "alice",
			"appid": "app-123",
			"ipaddr": "198.51.100.7",
			"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress": "alice@example.com"
		},
		"authorization": {
			"evidence": {
				"principalType": "User"
			}
		}
	}
}`

func TestParseChange(t *testing.T) {
	var env Envelope
	if err := json.Unmarshal([]byte(writeEventJSON), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	ev, err := ParseChange(env)
	if err != nil {
		t.Fatalf("ParseChange: %v", err)
	}

	if ev.ResourceID != "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Compute/virtualMachines/vm-1" {
		t.Errorf("unexpected resource id %q", ev.ResourceID)
	}
	if ev.Operation != "Microsoft.Compute/virtualMachines/write" {
		t.Errorf("unexpected operation %q", ev.Operation)
	}
	if ev.Principal != PrincipalUser {
		t.Errorf("unexpected principal %q", ev.Principal)
	}
	if ev.Claims.Name == nil || *ev.Claims.Name != "alice" {
		t.Errorf("name claim not decoded: %v", ev.Claims.Name)
	}
	if ev.Claims.Email == nil || *ev.Claims.Email != "alice@example.com" {
		t.Errorf("email claim not decoded from schema URI key: %v", ev.Claims.Email)
	}
	if ev.Claims.IPAddress == nil || *ev.Claims.IPAddress != "198.51.100.7" {
		t.Errorf("ipaddr claim not decoded: %v", ev.Claims.IPAddress)
	}
}

func TestParseChangeAbsentClaimsStayNil(t *testing.T) {
	env := Envelope{Data: json.RawMessage(`{"resourceUri": "/subscriptions/s/x", "claims": {"ipaddr": ""}}`)}

	ev, err := ParseChange(env)
	if err != nil {
		t.Fatalf("ParseChange: %v", err)
	}
	if ev.Claims.Name != nil {
		t.Error("absent name claim should be nil")
	}
	// Present-but-empty is not absence.
	if ev.Claims.IPAddress == nil || *ev.Claims.IPAddress != "" {
		t.Error("empty ipaddr claim should decode as present empty string")
	}
}

func TestParseChangeMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no data", ""},
		{"not json", "{"},
		{"missing resourceUri", `{"operationName": "x/write"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := Envelope{Data: json.RawMessage(tc.data)}
			if _, err := ParseChange(env); !errors.Is(err, ErrMalformed) {
				t.Fatalf("got %v, want ErrMalformed", err)
			}
		})
	}
}

func TestParsePrincipalType(t *testing.T) {
	cases := map[string]PrincipalType{
		"User":             PrincipalUser,
		"ServicePrincipal": PrincipalServicePrincipal,
		"ManagedIdentity":  PrincipalManagedIdentity,
		"Device":           PrincipalUnknown,
		"":                 PrincipalUnknown,
		"user":             PrincipalUnknown,
	}
	for in, want := range cases {
		if got := ParsePrincipalType(in); got != want {
			t.Errorf("ParsePrincipalType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClaimsMap(t *testing.T) {
	name := "alice"
	c := Claims{Name: &name}
	m := c.Map()
	if m["name"] != "alice" {
		t.Errorf("map missing name: %v", m)
	}
	if _, ok := m["appid"]; ok {
		t.Error("absent claims must not appear in the map")
	}
}
