package mongo

import (
	"errors"
	"testing"

	"github.com/sandia/users-manager/internal/core/domain"
)

func TestDuplicateKind_AttributesByIndexName(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		kind domain.CredentialKind
		ok   bool
	}{
		{
			name: "email index",
			msg:  `E11000 duplicate key error collection: users_manager.users index: email_unique dup key: { email: "a@example.com" }`,
			kind: domain.CredentialEmail,
			ok:   true,
		},
		{
			name: "username index",
			msg:  `E11000 duplicate key error collection: users_manager.users index: username_unique dup key: { username: "alice" }`,
			kind: domain.CredentialUsername,
			ok:   true,
		},
		{
			name: "id index is not a credential collision",
			msg:  `E11000 duplicate key error collection: users_manager.users index: _id_ dup key: { _id: ObjectId('...') }`,
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := duplicateKind(errors.New(tc.msg))
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && kind != tc.kind {
				t.Fatalf("kind = %s, want %s", kind, tc.kind)
			}
		})
	}
}
