/*
Package keyring collects the context keys a running application stashes
values under into one place, so packages share them instead of colliding.

The main method for managing keys is through a Keyring, or a custom
implementation of Keyringable. The engine registers the module's keys on
its default Keyring; host applications extend it with their own Keyable
values.

Following https://medium.com/@matryer/context-keys-in-go-5312346a868d,
a Keyable ought to be comparable and unambiguous about the package it
belongs to.
*/
package keyring
