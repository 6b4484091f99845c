package tags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2024-03-01 20:30 UTC is 12:30PM Pacific (standard time).
var winterNow = time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC)

// 2024-07-04 20:30 UTC is 1:30PM Pacific (daylight time).
var summerNow = time.Date(2024, 7, 4, 20, 30, 0, 0, time.UTC)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "3/1/2024", FormatDate(winterNow))
	assert.Equal(t, "7/4/2024", FormatDate(summerNow))
}

func TestFormatPacific(t *testing.T) {
	assert.Equal(t, "12:30PM", FormatPacific(winterNow))
	assert.Equal(t, "01:30PM", FormatPacific(summerNow))
}

func TestFormatPacificMorning(t *testing.T) {
	// 08:05 UTC on a winter day is 12:05AM Pacific.
	now := time.Date(2024, 1, 15, 8, 5, 0, 0, time.UTC)
	assert.Equal(t, "12:05AM", FormatPacific(now))
}

func TestClaimed(t *testing.T) {
	cases := []struct {
		name    string
		current Set
		want    bool
	}{
		{"empty", Set{}, false},
		{"nil", nil, false},
		{"foreign only", Set{"Env": "prod"}, false},
		{"creator only", Set{KeyCreator: "alice"}, true},
		{"date only", Set{KeyDateCreated: "3/1/2024"}, true},
		{"pst only", Set{KeyTimeCreatedInPST: "12:30PM"}, true},
		{"mutable only", Set{KeyLastModifiedBy: "bob", KeyLastModifiedDate: "3/1/2024"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Claimed(tc.current))
		})
	}
}

func TestReconcileUnclaimed(t *testing.T) {
	patch, firstClaim := Reconcile(Set{}, "alice", winterNow)

	assert.True(t, firstClaim)
	assert.Equal(t, Set{
		KeyCreator:          "alice",
		KeyDateCreated:      "3/1/2024",
		KeyTimeCreatedInPST: "12:30PM",
		KeyLastModifiedBy:   "alice",
		KeyLastModifiedDate: "3/1/2024",
	}, patch)
}

func TestReconcileClaimed(t *testing.T) {
	current := Set{
		KeyCreator:          "alice",
		KeyDateCreated:      "3/1/2024",
		KeyTimeCreatedInPST: "12:30PM",
	}

	patch, firstClaim := Reconcile(current, "bob", summerNow)

	assert.False(t, firstClaim)
	assert.Equal(t, Set{
		KeyLastModifiedBy:   "bob",
		KeyLastModifiedDate: "7/4/2024",
	}, patch)
	// The claimed branch must never carry immutable keys, whatever the input.
	assert.NotContains(t, patch, KeyCreator)
	assert.NotContains(t, patch, KeyDateCreated)
	assert.NotContains(t, patch, KeyTimeCreatedInPST)
}

func TestReconcilePartialImmutablePresence(t *testing.T) {
	// A single immutable key is enough to count as claimed; a stale or
	// stripped set must not trigger a Creator rewrite.
	patch, firstClaim := Reconcile(Set{KeyDateCreated: "1/1/2020"}, "mallory", winterNow)

	assert.False(t, firstClaim)
	assert.NotContains(t, patch, KeyCreator)
}

func TestReconcileLeavesForeignKeysAlone(t *testing.T) {
	current := Set{"Env": "prod", "CostCenter": "cc-42"}

	patch, _ := Reconcile(current, "alice", winterNow)

	assert.NotContains(t, patch, "Env")
	assert.NotContains(t, patch, "CostCenter")
	// Input set untouched.
	assert.Equal(t, "prod", current["Env"])
}

func TestReconcileDuplicateDeliveryIsIdempotent(t *testing.T) {
	first, _ := Reconcile(Set{}, "alice", winterNow)
	second, _ := Reconcile(Set{}, "alice", winterNow)
	assert.Equal(t, first, second)

	// Replaying after the first merge landed only refreshes mutable keys.
	replay, firstClaim := Reconcile(first, "alice", winterNow)
	assert.False(t, firstClaim)
	assert.Equal(t, "alice", replay[KeyLastModifiedBy])
}
