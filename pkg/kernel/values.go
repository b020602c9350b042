package kernel

import "strings"

// Email is stored lowercased so uniqueness checks are case-insensitive.
type Email string

func NewEmail(s string) Email {
	return Email(strings.ToLower(strings.TrimSpace(s)))
}

func (e Email) String() string { return string(e) }
func (e Email) IsEmpty() bool  { return string(e) == "" }

// IsValid applies a minimal shape check; real validation happens at delivery.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

type Phone string

func NewPhone(s string) Phone  { return Phone(strings.TrimSpace(s)) }
func (p Phone) String() string { return string(p) }
func (p Phone) IsEmpty() bool  { return string(p) == "" }

type FirstName string

func NewFirstName(s string) FirstName { return FirstName(strings.TrimSpace(s)) }
func (f FirstName) String() string    { return string(f) }
func (f FirstName) IsEmpty() bool     { return string(f) == "" }

type LastName string

func NewLastName(s string) LastName { return LastName(strings.TrimSpace(s)) }
func (l LastName) String() string   { return string(l) }
func (l LastName) IsEmpty() bool    { return string(l) == "" }
