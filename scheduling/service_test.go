package scheduling

import (
	"errors"
	"sync"
	"testing"
)

// memSlotRepo is an in-memory SlotRepo with the same claim semantics the
// gorm repo gets from its conditional UPDATE.
type memSlotRepo struct {
	mu     sync.Mutex
	nextID uint
	slots  map[uint]*Slot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{nextID: 1, slots: map[uint]*Slot{}}
}

func (r *memSlotRepo) Upsert(shopID uint, in SlotInput) (Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ShopID == shopID && s.Date == in.Date && s.StartTime == in.StartTime {
			s.EndTime = in.EndTime
			return *s, nil
		}
	}
	s := &Slot{ID: r.nextID, ShopID: shopID, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
	r.slots[r.nextID] = s
	r.nextID++
	return *s, nil
}

func (r *memSlotRepo) FindByID(id uint) (Slot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return Slot{}, false, nil
	}
	return *s, true, nil
}

func (r *memSlotRepo) FindByKey(shopID uint, date, startTime string) (Slot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ShopID == shopID && s.Date == date && s.StartTime == startTime {
			return *s, true, nil
		}
	}
	return Slot{}, false, nil
}

func (r *memSlotRepo) FindByBooking(bookingID uint) (Slot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.BookingID != nil && *s.BookingID == bookingID {
			return *s, true, nil
		}
	}
	return Slot{}, false, nil
}

func (r *memSlotRepo) ListRange(shopID uint, from, to string) ([]Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Slot
	for _, s := range r.slots {
		if s.ShopID == shopID && s.Date >= from && s.Date <= to {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSlotRepo) Claim(slotID, bookingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.IsBooked {
		return false, nil
	}
	id := bookingID
	s.IsBooked = true
	s.BookingID = &id
	return true, nil
}

func (r *memSlotRepo) Release(slotID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[slotID]; ok {
		s.IsBooked = false
		s.BookingID = nil
	}
	return nil
}

func (r *memSlotRepo) Delete(slotID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, slotID)
	return nil
}

func TestCreateSlotsUpsert(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)

	slots, err := svc.CreateSlots(1, []SlotInput{
		{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2024-06-01", StartTime: "10:00", EndTime: "11:00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	// Same key again only updates the end time, no duplicate row.
	slots, err = svc.CreateSlots(1, []SlotInput{
		{Date: "2024-06-01", StartTime: "09:00", EndTime: "09:45"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if slots[0].EndTime != "09:45" {
		t.Fatalf("expected end time updated, got %s", slots[0].EndTime)
	}

	all, _ := svc.ListSlots(1, "2024-06-01", "2024-06-01")
	if len(all) != 2 {
		t.Fatalf("upsert created a duplicate: %d slots", len(all))
	}
}

func TestBookConflicts(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)
	svc.CreateSlots(1, []SlotInput{{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"}})

	t.Run("missing slot", func(t *testing.T) {
		_, err := svc.Book(1, "2024-06-01", "14:00", 7)
		if !errors.Is(err, ErrSlotNotFound) {
			t.Fatalf("expected ErrSlotNotFound, got %v", err)
		}
	})

	t.Run("book then double-book", func(t *testing.T) {
		slot, err := svc.Book(1, "2024-06-01", "09:00", 1)
		if err != nil {
			t.Fatal(err)
		}
		if !slot.IsBooked || slot.BookingID == nil || *slot.BookingID != 1 {
			t.Fatalf("slot not claimed for booking 1: %+v", slot)
		}

		_, err = svc.Book(1, "2024-06-01", "09:00", 2)
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("expected ErrSlotTaken, got %v", err)
		}

		// slot still references booking 1 only
		got, found, _ := repo.FindByKey(1, "2024-06-01", "09:00")
		if !found || got.BookingID == nil || *got.BookingID != 1 {
			t.Fatalf("losing booking corrupted the slot: %+v", got)
		}
	})
}

func TestBookLostRace(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)
	svc.CreateSlots(1, []SlotInput{{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"}})

	// Simulate a competing request landing between the read and the claim:
	// the conditional claim must lose, not double-book.
	slot, _, _ := repo.FindByKey(1, "2024-06-01", "09:00")
	raceRepo := &claimInterceptor{memSlotRepo: repo, slotID: slot.ID, winner: 99}
	_, err := NewService(raceRepo).Book(1, "2024-06-01", "09:00", 2)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken after lost race, got %v", err)
	}
	got, _, _ := repo.FindByID(slot.ID)
	if got.BookingID == nil || *got.BookingID != 99 {
		t.Fatalf("winner's claim was overwritten: %+v", got)
	}
}

// claimInterceptor lets another booking win immediately before each claim.
type claimInterceptor struct {
	*memSlotRepo
	slotID uint
	winner uint
}

func (r *claimInterceptor) Claim(slotID, bookingID uint) (bool, error) {
	r.memSlotRepo.Claim(r.slotID, r.winner)
	return r.memSlotRepo.Claim(slotID, bookingID)
}

func TestConcurrentClaims(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)
	svc.CreateSlots(1, []SlotInput{{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"}})

	const n = 32
	wins := make(chan uint, n)
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(bookingID uint) {
			defer wg.Done()
			if _, err := svc.Book(1, "2024-06-01", "09:00", bookingID); err == nil {
				wins <- bookingID
			}
		}(uint(i))
	}
	wg.Wait()
	close(wins)

	var winners []uint
	for id := range wins {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", len(winners))
	}
	slot, _, _ := repo.FindByKey(1, "2024-06-01", "09:00")
	if slot.BookingID == nil || *slot.BookingID != winners[0] {
		t.Fatalf("slot does not reference the winner: %+v", slot)
	}
}

func TestRelease(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)
	svc.CreateSlots(1, []SlotInput{{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"}})

	if _, err := svc.Book(1, "2024-06-01", "09:00", 5); err != nil {
		t.Fatal(err)
	}
	if err := svc.Release(5); err != nil {
		t.Fatal(err)
	}
	slot, _, _ := repo.FindByKey(1, "2024-06-01", "09:00")
	if slot.IsBooked || slot.BookingID != nil {
		t.Fatalf("slot not released: %+v", slot)
	}

	// releasing a booking with no slot is a no-op
	if err := svc.Release(12345); err != nil {
		t.Fatalf("release of unknown booking should be a no-op, got %v", err)
	}

	// released slot can be booked again
	if _, err := svc.Book(1, "2024-06-01", "09:00", 6); err != nil {
		t.Fatalf("rebooking released slot failed: %v", err)
	}
}

func TestDeleteSlot(t *testing.T) {
	repo := newMemSlotRepo()
	svc := NewService(repo)
	svc.CreateSlots(1, []SlotInput{
		{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2024-06-01", StartTime: "10:00", EndTime: "11:00"},
	})

	booked, err := svc.Book(1, "2024-06-01", "09:00", 1)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("booked slot cannot be deleted", func(t *testing.T) {
		if err := svc.DeleteSlot(1, booked.ID); !errors.Is(err, ErrSlotBooked) {
			t.Fatalf("expected ErrSlotBooked, got %v", err)
		}
		got, found, _ := repo.FindByID(booked.ID)
		if !found || !got.IsBooked {
			t.Fatalf("failed delete modified the slot: %+v", got)
		}
	})

	t.Run("foreign shop cannot delete", func(t *testing.T) {
		free, _, _ := repo.FindByKey(1, "2024-06-01", "10:00")
		if err := svc.DeleteSlot(2, free.ID); !errors.Is(err, ErrNotSlotOwner) {
			t.Fatalf("expected ErrNotSlotOwner, got %v", err)
		}
	})

	t.Run("unbooked slot deletes", func(t *testing.T) {
		free, _, _ := repo.FindByKey(1, "2024-06-01", "10:00")
		if err := svc.DeleteSlot(1, free.ID); err != nil {
			t.Fatal(err)
		}
		if _, found, _ := repo.FindByID(free.ID); found {
			t.Fatal("slot still present after delete")
		}
	})

	t.Run("missing slot", func(t *testing.T) {
		if err := svc.DeleteSlot(1, 9999); !errors.Is(err, ErrSlotNotFound) {
			t.Fatalf("expected ErrSlotNotFound, got %v", err)
		}
	})
}
