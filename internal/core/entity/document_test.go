package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
)

func TestDocument_MarkPosted_VersionOwnedByRepo(t *testing.T) {
	doc := NewDocument(id.New())
	startVersion := doc.Version

	doc.MarkPosted()
	assert.True(t, doc.Posted)
	assert.Equal(t, 1, doc.PostedVersion)
	// The repository bumps the stored version under the optimistic lock;
	// a local bump here would make the WHERE version clause miss.
	assert.Equal(t, startVersion, doc.Version)

	doc.MarkUnposted()
	assert.False(t, doc.Posted)
	assert.Equal(t, startVersion, doc.Version)

	doc.MarkPosted()
	assert.Equal(t, 2, doc.PostedVersion)
	assert.Equal(t, startVersion, doc.Version)
}

func TestDocument_CanModify(t *testing.T) {
	doc := NewDocument(id.New())
	require.NoError(t, doc.CanModify())

	doc.MarkPosted()
	err := doc.CanModify()
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDocumentPosted, apperror.GetCode(err))

	doc.MarkUnposted()
	require.NoError(t, doc.CanModify())
}
