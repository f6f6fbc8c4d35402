package keyring

import (
	"sort"
)

type Keyable interface {
	// The key as in a key-value pair
	Key() string

	// A stringified version of the key, for logging
	String() string
}

type ByKeyable []Keyable

var _ sort.Interface = ByKeyable([]Keyable{})

func (k ByKeyable) Len() int           { return len(k) }
func (k ByKeyable) Swap(i, j int)      { k[i], k[j] = k[j], k[i] }
func (k ByKeyable) Less(i, j int) bool { return k[i].String() < k[j].String() }

// UniqueSort returns the set of Keyables sorted by String,
// dropping nil or zero-value Keyables and any duplicates.
func (k ByKeyable) UniqueSort() []Keyable {
	var out []Keyable
	seen := make(map[string]struct{})
	for _, key := range k {
		if key == nil || key.Key() == "" {
			continue
		}

		if _, ok := seen[key.Key()]; ok {
			continue
		}

		seen[key.Key()] = struct{}{}
		out = append(out, key)
	}

	sort.Sort(ByKeyable(out))

	return out
}

type Key string

// Key returns key so it can be used as a key a map[string].
func (k Key) Key() string { return string(k) }

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "http context key: " + string(k)
}

const _ Key = ""

// Something Keyringable because it stores arbitrary keys, accessible by a string name,
// and makes it convenient to grab a CurrentTargetKey or SessionKey.
type Keyringable interface {
	CurrentTargetKey() Keyable
	Key(name string) Keyable
	SessionKey() Keyable
	keys() map[string]Keyable
}

// Keyring stores Keyables and cannot be mutated outside of a constructor.
type Keyring struct {
	session       string
	currentTarget string
	internal      map[string]Keyable
}

// NewKeyring constructs a Keyring from the given Keyables.
// NewKeyring requires keys to be retrieved through SessionKey() and CurrentTargetKey(), respectively.
// NewKeyring accepts an arbitrary number of other Keyables, accessible through the Key method.
func NewKeyring(sessionKey, currentTargetKey Keyable, additional ...Keyable) Keyringable {
	if sessionKey == nil || currentTargetKey == nil {
		return nil
	}
	kr := &Keyring{
		session:       sessionKey.Key(),
		currentTarget: currentTargetKey.Key(),
		internal: map[string]Keyable{
			sessionKey.Key():       sessionKey,
			currentTargetKey.Key(): currentTargetKey,
		},
	}

	for _, k := range additional {
		if k == nil {
			continue
		}
		kr.internal[k.Key()] = k
	}

	return kr
}

// CurrentTargetKey returns the key set in the currentTargetKey parameter of NewKeyring or nil.
func (kr *Keyring) CurrentTargetKey() Keyable {
	return kr.internal[kr.currentTarget]
}

// Key returns the key by name (i.e., Keyable.Key()) or nil.
func (kr *Keyring) Key(name string) Keyable {
	return kr.internal[name]
}

// SessionKey returns the key set in the sessionKey parameter of NewKeyring or nil.
func (kr *Keyring) SessionKey() Keyable {
	return kr.internal[kr.session]
}

// keys exposes the internal map of Keyables.
func (kr *Keyring) keys() map[string]Keyable { return kr.internal }

// WithKeyring constructs a new Keyringable from the parent
// and adds additional Keyables to the new Keyringable.
func WithKeyring(parent Keyringable, additional ...Keyable) Keyringable {
	sk := parent.SessionKey()
	ck := parent.CurrentTargetKey()
	kr := &Keyring{
		session:       sk.Key(),
		currentTarget: ck.Key(),
		internal:      make(map[string]Keyable),
	}

	for k, v := range parent.keys() {
		kr.internal[k] = v
	}

	for _, k := range additional {
		if k == nil {
			continue
		}

		kr.internal[k.Key()] = k
	}

	return kr
}
