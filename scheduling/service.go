// Package scheduling owns the time-slot reservation rules: per-slot upserts
// keyed on (shop, date, start time), the exclusive booking claim and the
// release path. The storage behind it must provide an atomic conditional
// claim; the rules here never rely on a read-then-write from the handler
// layer.
package scheduling

import "errors"

var (
	ErrSlotNotFound = errors.New("time slot not found")
	ErrSlotTaken    = errors.New("time slot is already booked")
	ErrSlotBooked   = errors.New("cannot delete a booked time slot")
	ErrNotSlotOwner = errors.New("time slot belongs to another shop")
)

// Slot mirrors models.TimeSlot without dragging gorm into the rule set.
type Slot struct {
	ID        uint
	ShopID    uint
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string
	IsBooked  bool
	BookingID *uint
}

// SlotInput is one slot definition in a create/update batch.
type SlotInput struct {
	Date      string `json:"date" validate:"required,len=10"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
}

// SlotRepo is the storage contract. Claim must be atomic: of two
// concurrent calls for the same unbooked slot, exactly one may succeed.
type SlotRepo interface {
	Upsert(shopID uint, in SlotInput) (Slot, error)
	FindByID(id uint) (Slot, bool, error)
	FindByKey(shopID uint, date, startTime string) (Slot, bool, error)
	FindByBooking(bookingID uint) (Slot, bool, error)
	ListRange(shopID uint, from, to string) ([]Slot, error)
	// Claim sets is_booked=true and the booking id, guarded on
	// is_booked=false. Returns false when the guard lost.
	Claim(slotID, bookingID uint) (bool, error)
	Release(slotID uint) error
	Delete(slotID uint) error
}

// Service enforces the slot state machine:
//
//	Unbooked --Book--> Booked --Release--> Unbooked
//	Unbooked --DeleteSlot--> (removed)
//
// Booked slots cannot be deleted or re-booked until released.
type Service struct {
	repo SlotRepo
}

func NewService(repo SlotRepo) *Service {
	return &Service{repo: repo}
}

// CreateSlots upserts each slot independently: an existing
// (shop, date, start) row gets its end time refreshed, anything else is
// inserted unbooked. The batch is deliberately not transactional; a failure
// mid-way leaves the earlier slots in place and is reported with the count
// of what did land.
func (s *Service) CreateSlots(shopID uint, inputs []SlotInput) ([]Slot, error) {
	slots := make([]Slot, 0, len(inputs))
	for _, in := range inputs {
		slot, err := s.repo.Upsert(shopID, in)
		if err != nil {
			return slots, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ListSlots returns a shop's slots between two dates inclusive.
func (s *Service) ListSlots(shopID uint, from, to string) ([]Slot, error) {
	return s.repo.ListRange(shopID, from, to)
}

// DeleteSlot removes an unbooked slot. Deleting a booked slot is a
// conflict; the slot is left untouched.
func (s *Service) DeleteSlot(shopID, slotID uint) error {
	slot, found, err := s.repo.FindByID(slotID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSlotNotFound
	}
	if slot.ShopID != shopID {
		return ErrNotSlotOwner
	}
	if slot.IsBooked {
		return ErrSlotBooked
	}
	return s.repo.Delete(slotID)
}

// Book claims the slot at (shopID, date, startTime) for a booking. The
// claim itself is a conditional write in the repo, so a concurrent booking
// for the same slot loses cleanly with ErrSlotTaken instead of
// double-booking.
func (s *Service) Book(shopID uint, date, startTime string, bookingID uint) (Slot, error) {
	slot, found, err := s.repo.FindByKey(shopID, date, startTime)
	if err != nil {
		return Slot{}, err
	}
	if !found {
		return Slot{}, ErrSlotNotFound
	}
	if slot.IsBooked {
		return Slot{}, ErrSlotTaken
	}

	claimed, err := s.repo.Claim(slot.ID, bookingID)
	if err != nil {
		return Slot{}, err
	}
	if !claimed {
		// lost the race after the read
		return Slot{}, ErrSlotTaken
	}

	slot.IsBooked = true
	slot.BookingID = &bookingID
	return slot, nil
}

// Release frees whatever slot references the booking. A booking with no
// slot (already released, or never claimed) is a no-op, not an error.
func (s *Service) Release(bookingID uint) error {
	slot, found, err := s.repo.FindByBooking(bookingID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return s.repo.Release(slot.ID)
}
