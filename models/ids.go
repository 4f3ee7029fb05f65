package models

import gonanoid "github.com/matoous/go-nanoid/v2"

// NewID returns a fresh public identifier.
func NewID() (string, error) {
	return gonanoid.New()
}

func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	newID, err := NewID()
	if err != nil {
		return err
	}
	*id = newID
	return nil
}
