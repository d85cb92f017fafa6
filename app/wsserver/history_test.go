package wsserver

import "testing"

func TestHistoryReplaysLastTwentyOnly(t *testing.T) {
	h := newHistory()
	for i := 0; i < 30; i++ {
		h.append(newMessage("x", i))
	}
	recent := h.recent()
	if len(recent) != historyReplayCount {
		t.Fatalf("expected %d replayed messages, got %d", historyReplayCount, len(recent))
	}
	first := recent[0].Data.(int)
	if first != 10 {
		t.Fatalf("expected replay to start at message 10 (30-20), got %d", first)
	}
	last := recent[len(recent)-1].Data.(int)
	if last != 29 {
		t.Fatalf("expected replay to end at message 29, got %d", last)
	}
}

func TestHistoryWrapsAtCapacity(t *testing.T) {
	h := newHistory()
	for i := 0; i < historyCap+5; i++ {
		h.append(newMessage("x", i))
	}
	recent := h.recent()
	last := recent[len(recent)-1].Data.(int)
	if last != historyCap+4 {
		t.Fatalf("expected the last appended message to be the newest, got %d", last)
	}
}

func TestHistoryBeforeAnyAppendIsEmpty(t *testing.T) {
	h := newHistory()
	if len(h.recent()) != 0 {
		t.Fatal("expected no history before any message is appended")
	}
}
