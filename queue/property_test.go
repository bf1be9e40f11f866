package queue

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// model is a brute-force reference: build the full desired sequence, then cut
// the overflow from the head.
type model struct {
	items    []int
	capacity int
	policy   OverflowPolicy
}

func (m *model) admit(full []int) error {
	if m.capacity == Unbounded || len(full) <= m.capacity {
		m.items = full
		return nil
	}
	if m.policy.Rejects() {
		if m.policy == RejectHard {
			return ErrCapacityExceeded
		}
		return nil
	}
	m.items = full[len(full)-m.capacity:]
	return nil
}

func (m *model) enqueue(items []int) error {
	if len(items) == 0 {
		return nil
	}
	return m.admit(append(slices.Clone(m.items), items...))
}

func (m *model) insert(index int, items []int) error {
	if len(items) == 0 {
		return nil
	}
	idx := index
	if idx < 0 {
		idx = max(idx+len(m.items), 0)
	}
	idx = min(idx, len(m.items))
	full := slices.Concat(m.items[:idx], items, m.items[idx:])
	return m.admit(full)
}

func (m *model) extract(index, count int) []int {
	if index < 0 {
		index += len(m.items)
		if index < 0 {
			count += index
			index = 0
		}
	}
	if count <= 0 || index >= len(m.items) {
		return []int{}
	}
	end := min(index+count, len(m.items))
	out := slices.Clone(m.items[index:end])
	m.items = slices.Concat(m.items[:index], m.items[end:])
	return out
}

func TestQueueMatchesReferenceModel(t *testing.T) {
	for _, policy := range Policies() {
		for _, capacity := range []int{Unbounded, 1, 3, 8} {
			t.Run(fmt.Sprintf("%s/cap=%d", policy, capacity), func(t *testing.T) {
				rng := rand.New(rand.NewPCG(uint64(capacity), uint64(policy)))
				q := MustNew[int](quietConfig(capacity, policy))
				m := &model{capacity: capacity, policy: policy}
				next := 0

				batch := func() []int {
					n := rng.IntN(capacity + 4)
					out := make([]int, n)
					for i := range out {
						next++
						out[i] = next
					}
					return out
				}

				for step := range 500 {
					switch op := rng.IntN(4); op {
					case 0:
						items := batch()
						wantErr := m.enqueue(items)
						err := q.Enqueue(items...)
						require.ErrorIs(t, err, wantErr, "step %d Enqueue(%v)", step, items)
					case 1:
						index := rng.IntN(24) - 12
						items := batch()
						wantErr := m.insert(index, items)
						err := q.Insert(index, items...)
						require.ErrorIs(t, err, wantErr, "step %d Insert(%d, %v)", step, index, items)
					case 2:
						index := rng.IntN(24) - 12
						count := rng.IntN(4) + 1
						want := m.extract(index, count)
						got, err := q.Extract(index, count)
						require.NoError(t, err)
						require.Equal(t, want, got, "step %d Extract(%d, %d)", step, index, count)
					case 3:
						count := rng.IntN(3) + 1
						want := m.extract(0, count)
						got, err := q.DequeueNB(count)
						require.NoError(t, err)
						require.Equal(t, want, got, "step %d DequeueNB(%d)", step, count)
					}

					require.Equal(t, len(m.items), q.Len(), "step %d", step)
					require.Equal(t, append([]int{}, m.items...), q.Snapshot(), "step %d", step)
					if capacity != Unbounded {
						require.LessOrEqual(t, q.Len(), capacity, "step %d", step)
					}
				}
			})
		}
	}
}
