// Package event models the change events delivered by the Event Grid subscription.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Envelope event types handled by the listener.
const (
	TypeResourceWriteSuccess   = "Microsoft.Resources.ResourceWriteSuccess"
	TypeSubscriptionValidation = "Microsoft.EventGrid.SubscriptionValidationEvent"
)

// The email claim arrives under its full WS-* schema URI.
const emailClaimKey = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"

// ErrMalformed marks events whose payload cannot be used. Callers treat it as a
// skip, never as a fatal failure.
var ErrMalformed = errors.New("malformed event payload")

// PrincipalType identifies the kind of security principal behind an event.
type PrincipalType string

const (
	PrincipalUser             PrincipalType = "User"
	PrincipalServicePrincipal PrincipalType = "ServicePrincipal"
	PrincipalManagedIdentity  PrincipalType = "ManagedIdentity"
	PrincipalUnknown          PrincipalType = "Unknown"
)

// ParsePrincipalType maps the wire string onto a known principal type.
// Anything unrecognized (including empty) becomes PrincipalUnknown, which the
// filter rejects downstream.
func ParsePrincipalType(s string) PrincipalType {
	switch PrincipalType(s) {
	case PrincipalUser, PrincipalServicePrincipal, PrincipalManagedIdentity:
		return PrincipalType(s)
	}
	return PrincipalUnknown
}

// Claims carries the identity claims attached to a change event. Every field is
// optional on the wire; a nil pointer means the claim was absent, which is
// distinct from an empty string.
type Claims struct {
	Name      *string `json:"name,omitempty"`
	AppID     *string `json:"appid,omitempty"`
	IPAddress *string `json:"ipaddr,omitempty"`
	Email     *string `json:"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress,omitempty"`
}

// Map flattens the present claims into a plain string map for rule evaluation.
func (c Claims) Map() map[string]string {
	m := map[string]string{}
	if c.Name != nil {
		m["name"] = *c.Name
	}
	if c.AppID != nil {
		m["appid"] = *c.AppID
	}
	if c.IPAddress != nil {
		m["ipaddr"] = *c.IPAddress
	}
	if c.Email != nil {
		m[emailClaimKey] = *c.Email
	}
	return m
}

// Envelope is the outer Event Grid event.
type Envelope struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Subject   string          `json:"subject"`
	EventType string          `json:"eventType"`
	EventTime time.Time       `json:"eventTime"`
	Data      json.RawMessage `json:"data"`
}

// ValidationData is the payload of a subscription validation handshake.
type ValidationData struct {
	ValidationCode string `json:"validationCode"`
}

// ValidationResponse echoes the handshake code back to Event Grid.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}

type resourceWriteData struct {
	ResourceURI   string `json:"resourceUri"`
	OperationName string `json:"operationName"`
	Claims        Claims `json:"claims"`
	Authorization struct {
		Evidence struct {
			PrincipalType string `json:"principalType"`
		} `json:"evidence"`
	} `json:"authorization"`
}

// ChangeEvent is the decoded resource-write event the engine consumes.
// Immutable once built.
type ChangeEvent struct {
	ResourceID string
	Subject    string
	Operation  string
	Claims     Claims
	Principal  PrincipalType
}

// ParseChange decodes a resource-write envelope into a ChangeEvent.
// A missing resourceUri or an undecodable data block yields ErrMalformed.
func ParseChange(env Envelope) (ChangeEvent, error) {
	if len(env.Data) == 0 {
		return ChangeEvent{}, fmt.Errorf("%w: no data block", ErrMalformed)
	}

	var data resourceWriteData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if data.ResourceURI == "" {
		return ChangeEvent{}, fmt.Errorf("%w: missing resourceUri", ErrMalformed)
	}

	return ChangeEvent{
		ResourceID: data.ResourceURI,
		Subject:    env.Subject,
		Operation:  data.OperationName,
		Claims:     data.Claims,
		Principal:  ParsePrincipalType(data.Authorization.Evidence.PrincipalType),
	}, nil
}
