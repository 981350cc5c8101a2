package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/config"
	"github.com/portalevent/portal-api/internal/notify"
)

type recordingDeliverer struct {
	mu    sync.Mutex
	errs  []error
	texts []string
}

func (d *recordingDeliverer) Deliver(ctx context.Context, n notify.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.errs = append(d.errs, ctx.Err())
	d.texts = append(d.texts, n.Text)

	return ctx.Err()
}

func TestStartTransport_MemoryQueueDrainsAfterShutdownSignal(t *testing.T) {
	conf := &config.AppConfig{Notify: &config.NotifyConfig{Transport: config.TransportMemory, QueueSize: 10, Workers: 1}}
	d := &recordingDeliverer{}

	ctx, cancel := context.WithCancel(context.Background())
	n, err := startTransport(ctx, conf, d)
	require.NoError(t, err)

	cancel()
	n.Dispatch(notify.Chat("queued before shutdown"))
	n.Close()

	require.Equal(t, []string{"queued before shutdown"}, d.texts)
	assert.NoError(t, d.errs[0])
}

func TestStartTransport_UnknownTransport(t *testing.T) {
	conf := &config.AppConfig{Notify: &config.NotifyConfig{Transport: "carrier-pigeon"}}

	_, err := startTransport(context.Background(), conf, &recordingDeliverer{})
	assert.Error(t, err)
}
