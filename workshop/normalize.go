package workshop

// normalize.go - Projection of the two intake record kinds into WorkItem.
//
// The projection is explicit field-by-field with explicit defaults: a missing
// state becomes pending, a missing reviewed flag becomes false. There is no
// fallback key lookup; appointment-only fields stay nil for walk-ins.

// NormalizeAppointment projects a slot-booked record into the canonical shape.
func NormalizeAppointment(a Appointment) WorkItem {
	date := a.Date
	slot := a.Slot

	return WorkItem{
		ID:          NewItemID(OriginAppointment, a.ID),
		Origin:      OriginAppointment,
		NativeID:    a.ID,
		Customer:    a.Customer,
		Vehicle:     a.Vehicle,
		Description: a.Description,
		Date:        &date,
		Slot:        &slot,
		State:       defaultState(a.State),
		Reviewed:    a.Reviewed,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// NormalizeEntry projects a walk-in record into the canonical shape.
// Date and Slot are nil: walk-ins have no booked slot.
func NormalizeEntry(e WorkshopEntry) WorkItem {
	return WorkItem{
		ID:          NewItemID(OriginWalkIn, e.ID),
		Origin:      OriginWalkIn,
		NativeID:    e.ID,
		Customer:    e.Customer,
		Vehicle:     e.Vehicle,
		Description: e.Description,
		State:       defaultState(e.State),
		Reviewed:    e.Reviewed,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func defaultState(s State) State {
	if s == "" {
		return StatePending
	}
	return s
}
