package server

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/pointread/internal/app"
	"github.com/ayusman/pointread/internal/store"
	"gocv.io/x/gocv"
)

// eventBuffer is how many announcements a slow client may lag behind
// before messages to it are dropped.
const eventBuffer = 16

// Hub receives finished frames and announcements from the loop and fans
// them out to HTTP clients. Publishing never waits for a client.
type Hub struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	clients map[chan []byte]struct{}

	// watchers counts open MJPEG streams; frames are only encoded
	// while someone is watching.
	watchers atomic.Int32
	dropped  atomic.Int64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

// OnFrame stores the annotated frame as the latest JPEG snapshot.
func (h *Hub) OnFrame(frame *gocv.Mat, _ app.FrameResult) {
	if h.watchers.Load() == 0 || frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Printf("Failed to encode stream frame: %v", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.PublishJPEG(data)
}

// PublishJPEG replaces the latest snapshot.
func (h *Hub) PublishJPEG(data []byte) {
	h.mu.Lock()
	h.jpeg = data
	h.seq++
	h.mu.Unlock()
}

// Latest returns the newest snapshot and its sequence number.
// The sequence is 0 until the first frame arrives.
func (h *Hub) Latest() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.jpeg, h.seq
}

// OnAnnouncement sends the announcement as JSON to every subscriber.
func (h *Hub) OnAnnouncement(a *store.Announcement) {
	msg, err := json.Marshal(a)
	if err != nil {
		log.Printf("Failed to encode announcement: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe registers a new announcement listener. The returned function
// unregisters it and must be called once.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, eventBuffer)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of announcement listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) watch() func() {
	h.watchers.Add(1)
	return func() { h.watchers.Add(-1) }
}
