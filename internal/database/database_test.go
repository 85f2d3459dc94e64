package database

import (
	"encoding/json"
	"testing"

	"github.com/Dias221467/Wishlist_Manager/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicReadPolicy(t *testing.T) {
	raw, err := publicReadPolicy("wishes", blob.ObjectPrefix)
	require.NoError(t, err)

	var p bucketPolicy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "2012-10-17", p.Version)
	require.Len(t, p.Statement, 1)
	st := p.Statement[0]
	assert.Equal(t, "Allow", st.Effect)
	assert.Equal(t, []string{"*"}, st.Principal["AWS"])
	assert.Equal(t, []string{"s3:GetObject"}, st.Action)
	assert.Equal(t, []string{"arn:aws:s3:::wishes/wishes/*"}, st.Resource)
}
