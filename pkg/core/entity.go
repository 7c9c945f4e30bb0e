package core

import "fmt"

// EntityType identifies the kind of record evidence is attached to.
type EntityType string

const (
	EntitySite   EntityType = "site"
	EntityPerson EntityType = "person"
)

// ParseEntityType validates a raw entity type string.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate reports whether t is a known entity type.
func (t EntityType) Validate() error {
	switch t {
	case EntitySite, EntityPerson:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEntityType, string(t))
}

// Folder is the attachment folder name used for this entity type.
func (t EntityType) Folder() string {
	switch t {
	case EntitySite:
		return "Sites"
	case EntityPerson:
		return "Persons"
	}
	return ""
}

// Confidence is a qualitative certainty tag attached to investigative claims.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceSuspected Confidence = "suspected"
)

// ParseConfidence validates a raw confidence level. The empty string is
// accepted and means "not assessed".
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(s); c {
	case "", ConfidenceConfirmed, ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceSuspected:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
}

// Entity is a site or person under investigation.
type Entity struct {
	Type       EntityType
	ID         string
	Name       string
	URL        string
	Confidence Confidence
	Tags       []string
}

// Validate checks the fields every entity reference needs.
func (e Entity) Validate() error {
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		return fmt.Errorf("entity: %w", ErrEmptyID)
	}
	if _, err := ParseConfidence(string(e.Confidence)); err != nil {
		return err
	}
	return nil
}

// DisplayName returns the entity name, falling back to its ID.
func (e Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
