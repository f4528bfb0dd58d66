package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilmanv/piwake/internal/adapters/schedule"
	"github.com/tilmanv/piwake/internal/domain"
)

func TestHousekeeping_NetworkProbe(t *testing.T) {
	sched := schedule.NewFake(testStart)
	net := &fakeNetwork{online: true}
	pub := domain.NewPublisher()
	events := recordEvents(pub)

	h := NewHousekeeping(sched, net, nil, pub, nil, sched.Now)
	require.NoError(t, h.Start())
	assert.True(t, h.Online())

	// no change, no event
	sched.Advance(internetProbeInterval)
	assert.Len(t, events.ofKind(domain.EventNetworkChanged), 1)

	net.set(false)
	sched.Advance(internetProbeInterval)
	assert.False(t, h.Online())

	changes := events.ofKind(domain.EventNetworkChanged)
	require.Len(t, changes, 2)
	assert.False(t, changes[1].Online)
}

func TestHousekeeping_SunEventsRearm(t *testing.T) {
	sched := schedule.NewFake(testStart)
	pub := domain.NewPublisher()
	events := recordEvents(pub)

	almanac := fakeAlmanac{riseAfter: 2 * time.Hour, setAfter: 9 * time.Hour}
	h := NewHousekeeping(sched, &fakeNetwork{online: true}, almanac, pub, nil, sched.Now)
	require.NoError(t, h.Start())

	sched.Advance(2 * time.Hour)
	suns := events.ofKind(domain.EventSunEvent)
	require.Len(t, suns, 1)
	assert.Equal(t, sunriseJobID, suns[0].SunName)

	// firing re-armed the next sunrise
	sched.Advance(2 * time.Hour)
	assert.Len(t, events.ofKind(domain.EventSunEvent), 2)
}
