package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chupakbra/pbadm/internal/collection"
)

func TestGateCancelThenConfirmDoesNothing(t *testing.T) {
	var g collection.Gate
	fired := 0

	g.Request(collection.ActionDelete, "u1")
	g.Cancel()
	assert.False(t, g.ConfirmWith(func(collection.PendingAction) { fired++ }))
	assert.Zero(t, fired)
}

func TestGateConfirmFiresOnce(t *testing.T) {
	var g collection.Gate
	var got []collection.PendingAction

	g.Request(collection.ActionBlock, "u7")
	p, ok := g.Pending()
	assert.True(t, ok)
	assert.Equal(t, "u7", p.TargetID)

	fire := func(a collection.PendingAction) { got = append(got, a) }
	assert.True(t, g.ConfirmWith(fire))
	assert.False(t, g.ConfirmWith(fire))

	assert.Equal(t, []collection.PendingAction{{Kind: collection.ActionBlock, TargetID: "u7"}}, got)
	_, ok = g.Pending()
	assert.False(t, ok)
}

func TestGateFalsyIdentifier(t *testing.T) {
	var g collection.Gate
	g.Request(collection.ActionDelete, "0")
	a, ok := g.Confirm()
	assert.True(t, ok)
	assert.Equal(t, "0", a.TargetID)

	g.Request(collection.ActionDelete, "")
	a, ok = g.Confirm()
	assert.True(t, ok, "presence is tracked separately from the id value")
	assert.Equal(t, "", a.TargetID)
}

func TestGateRequestReplacesPending(t *testing.T) {
	var g collection.Gate
	g.Request(collection.ActionBlock, "a")
	g.Request(collection.ActionUnblock, "b")
	a, ok := g.Confirm()
	assert.True(t, ok)
	assert.Equal(t, collection.PendingAction{Kind: collection.ActionUnblock, TargetID: "b"}, a)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "delete", collection.ActionDelete.String())
	assert.Equal(t, "block", collection.ActionBlock.String())
	assert.Equal(t, "unblock", collection.ActionUnblock.String())
}
