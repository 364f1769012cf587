package service

import (
	"sync"

	"github.com/classfund/classfund.go/db/models"
	"github.com/google/uuid"
)

// PubsubTopicAll receives every payment event regardless of class.
const PubsubTopicAll int64 = 0

// Pubsub fans payment status changes out to in-process subscribers,
// keyed by class id. The webhook forwarder subscribes to it.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[int64]map[string]chan models.Payment
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[int64]map[string]chan models.Payment)
	return ps
}

func (ps *Pubsub) Subscribe(classId int64, ch chan models.Payment) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[classId] == nil {
		ps.subs[classId] = make(map[string]chan models.Payment)
	}
	subId = uuid.NewString()
	ps.subs[classId][subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string, classId int64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[classId] == nil {
		return
	}
	if ps.subs[classId][id] == nil {
		return
	}
	close(ps.subs[classId][id])
	delete(ps.subs[classId], id)
}

func (ps *Pubsub) Publish(classId int64, msg models.Payment) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.subs[classId] == nil {
		return
	}

	for _, ch := range ps.subs[classId] {
		ch <- msg
	}
}
