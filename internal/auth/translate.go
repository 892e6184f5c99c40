// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Translation between the persistence representation (record.go) and the
// wire representation (user.go, session.go). Each entity pair gets a
// typed mapping function in both directions; the law is that
// ToStorage(ToWire(rec)) == rec for any record that has not been
// redacted.

// ToWire converts a storage-shaped user graph into its wire shape,
// recursively converting nested owned entities.
func ToWire(rec UserRecord) (*User, error) {
	id, err := parseIdentifier(rec.ID, "users.id")
	if err != nil {
		return nil, err
	}
	contact, err := contactToWire(rec.Contact)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:             id,
		Role:           Role(rec.Role),
		Status:         Status(rec.Status),
		IsActive:       rec.IsActive,
		HashedPassword: rec.HashedPassword,
		Contact:        contact,
		CreatedAt:      rec.CreatedAt,
		UpdatedOn:      rec.UpdatedOn,
	}

	for _, s := range rec.Sessions {
		session, err := sessionToWire(s)
		if err != nil {
			return nil, err
		}
		user.Sessions = append(user.Sessions, session)
	}
	for _, t := range rec.Tickets {
		ticket, err := ticketToWire(t)
		if err != nil {
			return nil, err
		}
		user.Tickets = append(user.Tickets, ticket)
	}
	return user, nil
}

// ToStorage is the inverse of ToWire.
func ToStorage(user *User) UserRecord {
	rec := UserRecord{
		ID:             user.ID.String(),
		Role:           string(user.Role),
		Status:         string(user.Status),
		IsActive:       user.IsActive,
		HashedPassword: user.HashedPassword,
		Contact:        contactToStorage(user.Contact),
		CreatedAt:      user.CreatedAt,
		UpdatedOn:      user.UpdatedOn,
	}
	for _, s := range user.Sessions {
		rec.Sessions = append(rec.Sessions, SessionToStorage(s))
	}
	for _, t := range user.Tickets {
		rec.Tickets = append(rec.Tickets, ticketToStorage(t))
	}
	return rec
}

// SessionToStorage converts a wire session into its storage shape.
func SessionToStorage(s Session) SessionRecord {
	return SessionRecord{
		ID:        s.ID,
		OwnerID:   s.OwnerID.String(),
		IPAddress: s.IPAddress,
		InvalidOn: s.InvalidOn,
		CreatedAt: s.CreatedAt,
		UpdatedOn: s.UpdatedOn,
	}
}

func sessionToWire(rec SessionRecord) (Session, error) {
	owner, err := parseIdentifier(rec.OwnerID, "user_sessions.owner_id")
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        rec.ID,
		OwnerID:   owner,
		IPAddress: rec.IPAddress,
		InvalidOn: rec.InvalidOn,
		CreatedAt: rec.CreatedAt,
		UpdatedOn: rec.UpdatedOn,
	}, nil
}

func contactToWire(rec ContactRecord) (Contact, error) {
	owner, err := parseIdentifier(rec.OwnerID, "user_contacts.owner_id")
	if err != nil {
		return Contact{}, err
	}
	contact := Contact{
		OwnerID:     owner,
		Username:    rec.Username,
		FirstName:   rec.FirstName,
		LastName:    rec.LastName,
		PhoneNumber: rec.PhoneNumber,
		CreatedAt:   rec.CreatedAt,
		UpdatedOn:   rec.UpdatedOn,
	}
	for _, e := range rec.Emails {
		email, err := emailToWire(e)
		if err != nil {
			return Contact{}, err
		}
		contact.Emails = append(contact.Emails, email)
	}
	return contact, nil
}

func contactToStorage(c Contact) ContactRecord {
	rec := ContactRecord{
		OwnerID:     c.OwnerID.String(),
		Username:    c.Username,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt,
		UpdatedOn:   c.UpdatedOn,
	}
	for _, e := range c.Emails {
		rec.Emails = append(rec.Emails, EmailRecord{
			ID:        e.ID.String(),
			OwnerID:   e.OwnerID.String(),
			ContactID: e.ContactID.String(),
			Value:     e.Value,
			CreatedAt: e.CreatedAt,
			UpdatedOn: e.UpdatedOn,
		})
	}
	return rec
}

func emailToWire(rec EmailRecord) (Email, error) {
	id, err := parseIdentifier(rec.ID, "user_email_addresses.id")
	if err != nil {
		return Email{}, err
	}
	owner, err := parseIdentifier(rec.OwnerID, "user_email_addresses.owner_id")
	if err != nil {
		return Email{}, err
	}
	contactID, err := parseIdentifier(rec.ContactID, "user_email_addresses.contact_id")
	if err != nil {
		return Email{}, err
	}
	return Email{
		ID:        id,
		OwnerID:   owner,
		ContactID: contactID,
		Value:     rec.Value,
		CreatedAt: rec.CreatedAt,
		UpdatedOn: rec.UpdatedOn,
	}, nil
}

func ticketToWire(rec TicketRecord) (Ticket, error) {
	id, err := parseIdentifier(rec.ID, "service_tickets.id")
	if err != nil {
		return Ticket{}, err
	}
	owner, err := parseIdentifier(rec.OwnerID, "service_tickets.owner_id")
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		ID:               id,
		OwnerID:          owner,
		ShortDescription: rec.ShortDescription,
		LongDescription:  rec.LongDescription,
		CreatedAt:        rec.CreatedAt,
		UpdatedOn:        rec.UpdatedOn,
	}, nil
}

func ticketToStorage(t Ticket) TicketRecord {
	return TicketRecord{
		ID:               t.ID.String(),
		OwnerID:          t.OwnerID.String(),
		ShortDescription: t.ShortDescription,
		LongDescription:  t.LongDescription,
		CreatedAt:        t.CreatedAt,
		UpdatedOn:        t.UpdatedOn,
	}
}

func parseIdentifier(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, oops.Code(CodeTranslateFailed).
			With("field", field).
			Wrap(err)
	}
	return id, nil
}

// AsMap flattens the wire user into a nested map graph, the form the
// redaction step and the HTTP boundary operate on.
func (u *User) AsMap() map[string]any {
	sessions := make([]map[string]any, 0, len(u.Sessions))
	for _, s := range u.Sessions {
		sessions = append(sessions, s.AsMap())
	}
	tickets := make([]map[string]any, 0, len(u.Tickets))
	for _, t := range u.Tickets {
		tickets = append(tickets, map[string]any{
			"id":                t.ID.String(),
			"owner_id":          t.OwnerID.String(),
			"short_description": t.ShortDescription,
			"long_description":  t.LongDescription,
			"created_at":        t.CreatedAt,
			"updated_on":        t.UpdatedOn,
		})
	}
	return map[string]any{
		"id":              u.ID.String(),
		"role":            string(u.Role),
		"status":          string(u.Status),
		"is_active":       u.IsActive,
		"hashed_password": u.HashedPassword,
		"user_contacts":   u.Contact.AsMap(),
		"user_sessions":   sessions,
		"service_tickets": tickets,
		"created_at":      u.CreatedAt,
		"updated_on":      u.UpdatedOn,
	}
}

// AsMap flattens the contact into a map.
func (c Contact) AsMap() map[string]any {
	emails := make([]map[string]any, 0, len(c.Emails))
	for _, e := range c.Emails {
		emails = append(emails, map[string]any{
			"id":         e.ID.String(),
			"owner_id":   e.OwnerID.String(),
			"contact_id": e.ContactID.String(),
			"value":      e.Value,
			"created_at": e.CreatedAt,
			"updated_on": e.UpdatedOn,
		})
	}
	return map[string]any{
		"owner_id":             c.OwnerID.String(),
		"username":             c.Username,
		"first_name":           c.FirstName,
		"last_name":            c.LastName,
		"phone_number":         c.PhoneNumber,
		"user_email_addresses": emails,
		"created_at":           c.CreatedAt,
		"updated_on":           c.UpdatedOn,
	}
}

// AsMap flattens the session into a map. The id stays raw token bytes;
// EncodeToken produces the bearer form.
func (s Session) AsMap() map[string]any {
	return map[string]any{
		"id":         s.ID,
		"owner_id":   s.OwnerID.String(),
		"ipaddress":  s.IPAddress,
		"invalid_on": s.InvalidOn,
		"created_at": s.CreatedAt,
		"updated_on": s.UpdatedOn,
	}
}

// UserFromMap reconstructs a wire user from a flattened map graph,
// rebuilding nested owned-entity values. Malformed nested collections
// (missing required keys, wrong value types) fail with a
// CodeTranslateFailed error.
func UserFromMap(m map[string]any) (*User, error) {
	id, err := mapIdentifier(m, "id")
	if err != nil {
		return nil, err
	}
	role, err := mapString(m, "role")
	if err != nil {
		return nil, err
	}
	status, err := mapString(m, "status")
	if err != nil {
		return nil, err
	}
	isActive, err := mapBool(m, "is_active")
	if err != nil {
		return nil, err
	}
	hashed, err := mapBytes(m, "hashed_password")
	if err != nil {
		return nil, err
	}
	createdAt, err := mapTime(m, "created_at")
	if err != nil {
		return nil, err
	}
	updatedOn, err := mapTime(m, "updated_on")
	if err != nil {
		return nil, err
	}

	contactMap, err := mapChild(m, "user_contacts")
	if err != nil {
		return nil, err
	}
	contact, err := contactFromMap(contactMap)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:             id,
		Role:           Role(role),
		Status:         Status(status),
		IsActive:       isActive,
		HashedPassword: hashed,
		Contact:        contact,
		CreatedAt:      createdAt,
		UpdatedOn:      updatedOn,
	}

	sessionMaps, err := mapCollection(m, "user_sessions")
	if err != nil {
		return nil, err
	}
	for _, sm := range sessionMaps {
		session, err := sessionFromMap(sm)
		if err != nil {
			return nil, err
		}
		user.Sessions = append(user.Sessions, session)
	}

	ticketMaps, err := mapCollection(m, "service_tickets")
	if err != nil {
		return nil, err
	}
	for _, tm := range ticketMaps {
		ticket, err := ticketFromMap(tm)
		if err != nil {
			return nil, err
		}
		user.Tickets = append(user.Tickets, ticket)
	}
	return user, nil
}

func contactFromMap(m map[string]any) (Contact, error) {
	owner, err := mapIdentifier(m, "owner_id")
	if err != nil {
		return Contact{}, err
	}
	username, err := mapString(m, "username")
	if err != nil {
		return Contact{}, err
	}
	firstName, err := mapString(m, "first_name")
	if err != nil {
		return Contact{}, err
	}
	lastName, err := mapString(m, "last_name")
	if err != nil {
		return Contact{}, err
	}
	phone, err := mapString(m, "phone_number")
	if err != nil {
		return Contact{}, err
	}
	createdAt, err := mapTime(m, "created_at")
	if err != nil {
		return Contact{}, err
	}
	updatedOn, err := mapTime(m, "updated_on")
	if err != nil {
		return Contact{}, err
	}

	contact := Contact{
		OwnerID:     owner,
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phone,
		CreatedAt:   createdAt,
		UpdatedOn:   updatedOn,
	}

	emailMaps, err := mapCollection(m, "user_email_addresses")
	if err != nil {
		return Contact{}, err
	}
	for _, em := range emailMaps {
		email, err := emailFromMap(em)
		if err != nil {
			return Contact{}, err
		}
		contact.Emails = append(contact.Emails, email)
	}
	return contact, nil
}

func emailFromMap(m map[string]any) (Email, error) {
	id, err := mapIdentifier(m, "id")
	if err != nil {
		return Email{}, err
	}
	owner, err := mapIdentifier(m, "owner_id")
	if err != nil {
		return Email{}, err
	}
	contactID, err := mapIdentifier(m, "contact_id")
	if err != nil {
		return Email{}, err
	}
	value, err := mapString(m, "value")
	if err != nil {
		return Email{}, err
	}
	createdAt, err := mapTime(m, "created_at")
	if err != nil {
		return Email{}, err
	}
	updatedOn, err := mapTime(m, "updated_on")
	if err != nil {
		return Email{}, err
	}
	return Email{
		ID:        id,
		OwnerID:   owner,
		ContactID: contactID,
		Value:     value,
		CreatedAt: createdAt,
		UpdatedOn: updatedOn,
	}, nil
}

func sessionFromMap(m map[string]any) (Session, error) {
	id, err := mapBytes(m, "id")
	if err != nil {
		return Session{}, err
	}
	owner, err := mapIdentifier(m, "owner_id")
	if err != nil {
		return Session{}, err
	}
	ip, err := mapString(m, "ipaddress")
	if err != nil {
		return Session{}, err
	}
	invalidOn, err := mapTime(m, "invalid_on")
	if err != nil {
		return Session{}, err
	}
	createdAt, err := mapTime(m, "created_at")
	if err != nil {
		return Session{}, err
	}
	updatedOn, err := mapTime(m, "updated_on")
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        id,
		OwnerID:   owner,
		IPAddress: ip,
		InvalidOn: invalidOn,
		CreatedAt: createdAt,
		UpdatedOn: updatedOn,
	}, nil
}

func ticketFromMap(m map[string]any) (Ticket, error) {
	id, err := mapIdentifier(m, "id")
	if err != nil {
		return Ticket{}, err
	}
	owner, err := mapIdentifier(m, "owner_id")
	if err != nil {
		return Ticket{}, err
	}
	short, err := mapString(m, "short_description")
	if err != nil {
		return Ticket{}, err
	}
	long, err := mapString(m, "long_description")
	if err != nil {
		return Ticket{}, err
	}
	createdAt, err := mapTime(m, "created_at")
	if err != nil {
		return Ticket{}, err
	}
	updatedOn, err := mapTime(m, "updated_on")
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		ID:               id,
		OwnerID:          owner,
		ShortDescription: short,
		LongDescription:  long,
		CreatedAt:        createdAt,
		UpdatedOn:        updatedOn,
	}, nil
}

// Redact destructively removes the fields addressed by the given dotted
// paths from m and returns the same mapping. A path segment addresses a
// nested map. A missing leaf under a present parent is skipped; a path
// whose parent is absent or not a map is an error, since that indicates
// the blacklist and the record shape have drifted apart.
func Redact(m map[string]any, paths ...string) (map[string]any, error) {
	for _, path := range paths {
		segments := strings.Split(path, ".")
		parent := m
		for i, segment := range segments[:len(segments)-1] {
			child, ok := parent[segment]
			if !ok {
				return nil, oops.Code(CodeTranslateFailed).
					With("path", path).
					Errorf("redaction parent %q is absent", strings.Join(segments[:i+1], "."))
			}
			childMap, ok := child.(map[string]any)
			if !ok {
				return nil, oops.Code(CodeTranslateFailed).
					With("path", path).
					Errorf("redaction parent %q is not a mapping", strings.Join(segments[:i+1], "."))
			}
			parent = childMap
		}
		delete(parent, segments[len(segments)-1])
	}
	return m, nil
}

func mapChild(m map[string]any, key string) (map[string]any, error) {
	value, ok := m[key]
	if !ok {
		return nil, missingKey(key)
	}
	child, ok := value.(map[string]any)
	if !ok {
		return nil, wrongType(key, "mapping")
	}
	return child, nil
}

func mapCollection(m map[string]any, key string) ([]map[string]any, error) {
	value, ok := m[key]
	if !ok {
		return nil, missingKey(key)
	}
	switch items := value.(type) {
	case []map[string]any:
		return items, nil
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			child, ok := item.(map[string]any)
			if !ok {
				return nil, wrongType(key, "collection of mappings")
			}
			out = append(out, child)
		}
		return out, nil
	default:
		return nil, wrongType(key, "collection of mappings")
	}
}

func mapString(m map[string]any, key string) (string, error) {
	value, ok := m[key]
	if !ok {
		return "", missingKey(key)
	}
	s, ok := value.(string)
	if !ok {
		return "", wrongType(key, "string")
	}
	return s, nil
}

func mapBool(m map[string]any, key string) (bool, error) {
	value, ok := m[key]
	if !ok {
		return false, missingKey(key)
	}
	b, ok := value.(bool)
	if !ok {
		return false, wrongType(key, "bool")
	}
	return b, nil
}

func mapBytes(m map[string]any, key string) ([]byte, error) {
	value, ok := m[key]
	if !ok {
		return nil, missingKey(key)
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, wrongType(key, "bytes")
	}
	return b, nil
}

func mapTime(m map[string]any, key string) (time.Time, error) {
	value, ok := m[key]
	if !ok {
		return time.Time{}, missingKey(key)
	}
	t, ok := value.(time.Time)
	if !ok {
		return time.Time{}, wrongType(key, "timestamp")
	}
	return t, nil
}

func mapIdentifier(m map[string]any, key string) (uuid.UUID, error) {
	s, err := mapString(m, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, oops.Code(CodeTranslateFailed).
			With("field", key).
			Wrap(err)
	}
	return id, nil
}

func missingKey(key string) error {
	return oops.Code(CodeTranslateFailed).
		With("field", key).
		Errorf("required key %q is missing", key)
}

func wrongType(key, want string) error {
	return oops.Code(CodeTranslateFailed).
		With("field", key).
		Errorf("key %q is not a %s", key, want)
}
