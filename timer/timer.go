// Package timer is the scheduler backing actor.TimerHandle (component L,
// SPEC_FULL.md). It is grounded directly on actor_cell.rs's Timer impl:
// schedule/schedule_once/schedule_at_time/cancel_schedule each build a job
// and hand it to a single channel the timer goroutine owns, mirroring the
// Rust source's `self.system.timer.send(Job::...)`. Job ids are generated
// with google/uuid exactly as the source uses `Uuid::new_v4()`.
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.ambercrest.dev/cellsupervise/actor"
	"go.ambercrest.dev/cellsupervise/internal/log"
)

type jobKind int

const (
	jobOnce jobKind = iota
	jobRepeat
	jobCancel
)

type job struct {
	kind     jobKind
	id       uuid.UUID
	sendAt   time.Time
	interval time.Duration
	receiver actor.BasicRef
	sender   *actor.BasicRef
	msg      actor.AnyMessage
}

// Timer is the concrete actor.TimerHandle backend: one goroutine owns a
// min-heap of pending jobs ordered by send time, woken either by a new
// submission or by its own deadline timer.
type Timer struct {
	submit chan job
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// Start launches the timer goroutine and returns a handle to it.
func Start() *Timer {
	t := &Timer{
		submit: make(chan job, 64),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Schedule requests a repeating job (actor.TimerHandle).
func (t *Timer) Schedule(initialDelay, interval time.Duration, receiver actor.BasicRef, sender *actor.BasicRef, msg actor.AnyMessage) uuid.UUID {
	id := uuid.New()
	t.submit <- job{
		kind:     jobRepeat,
		id:       id,
		sendAt:   time.Now().Add(initialDelay),
		interval: interval,
		receiver: receiver,
		sender:   sender,
		msg:      msg,
	}
	return id
}

// ScheduleOnce requests a one-shot job after delay (actor.TimerHandle).
func (t *Timer) ScheduleOnce(delay time.Duration, receiver actor.BasicRef, sender *actor.BasicRef, msg actor.AnyMessage) uuid.UUID {
	id := uuid.New()
	t.submit <- job{
		kind:     jobOnce,
		id:       id,
		sendAt:   time.Now().Add(delay),
		receiver: receiver,
		sender:   sender,
		msg:      msg,
	}
	return id
}

// ScheduleAtTime requests a one-shot job at an absolute time
// (actor.TimerHandle).
func (t *Timer) ScheduleAtTime(at time.Time, receiver actor.BasicRef, sender *actor.BasicRef, msg actor.AnyMessage) uuid.UUID {
	id := uuid.New()
	t.submit <- job{
		kind:     jobOnce,
		id:       id,
		sendAt:   at,
		receiver: receiver,
		sender:   sender,
		msg:      msg,
	}
	return id
}

// CancelSchedule cancels a previously scheduled job by id
// (actor.TimerHandle). Cancelling an id that already fired or does not
// exist is a silent no-op, matching the source's fire-and-forget send.
func (t *Timer) CancelSchedule(id uuid.UUID) {
	t.submit <- job{kind: jobCancel, id: id}
}

// Stop halts the timer goroutine. Pending jobs are discarded.
func (t *Timer) Stop() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

func (t *Timer) run() {
	defer close(t.done)

	pq := &jobQueue{}
	heap.Init(pq)

	var wake <-chan time.Time
	var nextTimer *time.Timer

	resetWake := func() {
		if nextTimer != nil {
			nextTimer.Stop()
			nextTimer = nil
		}
		if pq.Len() == 0 {
			wake = nil
			return
		}
		d := time.Until((*pq)[0].sendAt)
		if d < 0 {
			d = 0
		}
		nextTimer = time.NewTimer(d)
		wake = nextTimer.C
	}

	resetWake()

	for {
		select {
		case <-t.stop:
			return

		case j := <-t.submit:
			if j.kind == jobCancel {
				removeByID(pq, j.id)
			} else {
				heap.Push(pq, &j)
			}
			resetWake()

		case <-wake:
			now := time.Now()
			for pq.Len() > 0 && !(*pq)[0].sendAt.After(now) {
				due := heap.Pop(pq).(*job)
				t.fire(due)
				if due.kind == jobRepeat {
					due.sendAt = due.sendAt.Add(due.interval)
					heap.Push(pq, due)
				}
			}
			resetWake()
		}
	}
}

func (t *Timer) fire(j *job) {
	msg := j.msg
	if err := j.receiver.SendAny(&msg, j.sender); err != nil {
		log.Printf("timer: delivery of job %s to %s failed: %v", j.id, j.receiver.Path(), err)
	}
}

func removeByID(pq *jobQueue, id uuid.UUID) {
	for i, j := range *pq {
		if j.id == id {
			heap.Remove(pq, i)
			return
		}
	}
}

// jobQueue is a container/heap ordered by sendAt, earliest first.
type jobQueue []*job

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].sendAt.Before(q[j].sendAt) }
func (q jobQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *jobQueue) Push(x any)         { *q = append(*q, x.(*job)) }
func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
