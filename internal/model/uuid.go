package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entities are addressed by UUID everywhere outside the database; the integer
// keys never leave it. The hooks fill the UUID on insert unless the caller
// already set one (snapshot import preserves original identities).

func fillUUID(s *string) {
	if *s == "" {
		*s = uuid.NewString()
	}
}

func (b *Building) BeforeCreate(*gorm.DB) error        { fillUUID(&b.UUID); return nil }
func (c *Course) BeforeCreate(*gorm.DB) error          { fillUUID(&c.UUID); return nil }
func (m *Machine) BeforeCreate(*gorm.DB) error         { fillUUID(&m.UUID); return nil }
func (b *Booking) BeforeCreate(*gorm.DB) error         { fillUUID(&b.UUID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error            { fillUUID(&u.UUID); return nil }
func (s *EnrolledStudent) BeforeCreate(*gorm.DB) error { fillUUID(&s.UUID); return nil }
func (t *ApiToken) BeforeCreate(*gorm.DB) error        { fillUUID(&t.UUID); return nil }
