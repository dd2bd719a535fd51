package pubsub

import (
	"context"
	"testing"

	"github.com/khatmdev/quadramall-sub001/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionResourceName(t *testing.T) {
	c := &Client{projectID: "qm-prod"}
	require.Equal(t, "projects/qm-prod/subscriptions/cart", c.subscriptionResourceName(" cart "))
	require.Equal(t, "projects/other/subscriptions/x", c.subscriptionResourceName("projects/other/subscriptions/x"))
	require.Empty(t, c.subscriptionResourceName(""))
	require.Empty(t, (&Client{}).subscriptionResourceName("cart"))

	var nilClient *Client
	require.Empty(t, nilClient.subscriptionResourceName("cart"))
	require.Nil(t, nilClient.CatalogSubscription())
	require.NoError(t, nilClient.Close())
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{CatalogSubscription: "x"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)
}
