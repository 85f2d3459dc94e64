package models

import "fmt"

// Person is one of the two members of the household.
type Person uint8

const (
	Patrik Person = iota + 1
	Julia
)

var People = []Person{Patrik, Julia}

func ParsePerson(s string) (Person, error) {
	switch s {
	case "Patrik":
		return Patrik, nil
	case "Julia":
		return Julia, nil
	}
	return 0, fmt.Errorf("unknown person %q", s)
}

func (p Person) Valid() bool {
	return p == Patrik || p == Julia
}

// Other returns the counterpart. The zero value has none.
func (p Person) Other() Person {
	switch p {
	case Patrik:
		return Julia
	case Julia:
		return Patrik
	}
	return 0
}

func (p Person) String() string {
	switch p {
	case Patrik:
		return "Patrik"
	case Julia:
		return "Julia"
	}
	return ""
}

func (p Person) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid person %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Person) UnmarshalText(b []byte) error {
	parsed, err := ParsePerson(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
