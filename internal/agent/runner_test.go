package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxai/internal/constants"
	"inboxai/internal/mailbox"
	pkgerrors "inboxai/pkg/errors"
)

func TestDispatchForKnownKinds(t *testing.T) {
	d := NewDispatch(nil)

	for _, kind := range []Kind{KindEmailSummarizer, KindHubSpotData, KindCustom} {
		r, err := d.For(kind)
		require.NoError(t, err, string(kind))
		assert.NotNil(t, r)
	}
}

func TestDispatchForUnknownKind(t *testing.T) {
	d := NewDispatch(nil)

	_, err := d.For(Kind("slack_bot"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestUnsupportedKindsDoNotExecute(t *testing.T) {
	d := NewDispatch(nil)
	criteria := mailbox.NewCriteria(constants.CriteriaLatestN, 10)

	for _, kind := range []Kind{KindHubSpotData, KindCustom} {
		r, err := d.For(kind)
		require.NoError(t, err)

		_, err = r.Run(context.Background(), &Agent{ID: "a-1", Kind: kind}, criteria)
		require.Error(t, err)

		var appErr *pkgerrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.ErrNotSupported.Code, appErr.Code)
	}
}

func TestEmailRunnerRequiresCredential(t *testing.T) {
	d := NewDispatch(nil)
	r, err := d.For(KindEmailSummarizer)
	require.NoError(t, err)

	a := &Agent{ID: "a-1", Kind: KindEmailSummarizer, Config: map[string]interface{}{}}
	_, err = r.Run(context.Background(), a, mailbox.NewCriteria(constants.CriteriaLatestN, 10))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuth(err))
}
