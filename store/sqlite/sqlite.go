/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements workshop.Store and audit.Store using SQLite. The same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INVARIANTS AT THE STORE:
  The two races with real business impact are closed here, not in
  application code:
  - idx_appointments_date_slot: UNIQUE(date, slot). Two concurrent bookings
    of the same slot resolve to one INSERT and one constraint violation,
    which surfaces as workshop.ConflictError.
  - idx_entries_active_plate: partial UNIQUE(plate) WHERE state is active.
    At most one pending/in_progress entry exists per vehicle plate.
  - invoices.work_item_id UNIQUE: quote acceptance is idempotent; the
    second acceptance conflicts instead of double-invoicing.

AUDIT LOG:
  audit_log is append-only. No UPDATE or DELETE statements exist for it.

MONEY:
  Monetary values are persisted as decimal strings (already rounded to two
  places at acceptance), never as floats.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers do not
  block, single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/workshop.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - workshop/store.go: interface definitions and failure mapping contract
  - workshop/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/autopro/workshop-engine/audit"
	"github.com/autopro/workshop-engine/billing"
	"github.com/autopro/workshop-engine/schedule"
	"github.com/autopro/workshop-engine/workshop"
)

// Store implements workshop.Store and audit.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY between concurrent writers;
	// serialization above this level is the engine's per-item lock.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Slot-booked intake
	CREATE TABLE IF NOT EXISTS appointments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		plate TEXT NOT NULL,
		year INTEGER NOT NULL,
		date TEXT NOT NULL,
		slot TEXT NOT NULL,
		description TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'pending',
		reviewed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: atomic check-and-reserve for bookings. Two concurrent
	-- bookings of the same (date, slot) resolve to exactly one winner.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_date_slot
		ON appointments(date, slot);

	CREATE INDEX IF NOT EXISTS idx_appointments_state
		ON appointments(state);

	-- Walk-in intake
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		plate TEXT NOT NULL,
		year INTEGER,
		description TEXT,
		state TEXT NOT NULL DEFAULT 'pending',
		reviewed BOOLEAN NOT NULL DEFAULT FALSE,
		checked_in_at TEXT NOT NULL,
		finished_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one active entry per vehicle plate.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_active_plate
		ON entries(plate)
		WHERE state IN ('pending', 'in_progress');

	CREATE INDEX IF NOT EXISTS idx_entries_state
		ON entries(state);

	-- Accepted quotes, frozen. One per work item.
	CREATE TABLE IF NOT EXISTS invoices (
		number TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL UNIQUE,
		origin TEXT NOT NULL,
		description TEXT,
		lines_json TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		discount TEXT NOT NULL,
		tax TEXT NOT NULL,
		total TEXT NOT NULL,
		actor TEXT NOT NULL,
		issued_at TEXT NOT NULL
	);

	-- Append-only audit trail. No UPDATE, no DELETE.
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT,
		item_kind TEXT,
		item_id TEXT,
		old_state TEXT,
		new_state TEXT,
		vehicle_info TEXT,
		customer_info TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_item
		ON audit_log(item_id);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp
		ON audit_log(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// APPOINTMENTS (workshop.Store)
// =============================================================================

// InsertAppointment writes the booking; the unique (date, slot) index is
// the check-and-reserve.
func (s *Store) InsertAppointment(ctx context.Context, a *workshop.Appointment) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments
		(name, phone, email, make, model, plate, year, date, slot, description,
		 state, reviewed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Phone, nullString(a.Email),
		a.Make, a.Model, a.Plate, a.Year,
		dayString(a.Date), string(a.Slot), a.Description,
		string(a.State), a.Reviewed,
		timeString(a.CreatedAt), timeString(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &workshop.ConflictError{
				Resource: "slot",
				Detail:   "the selected time is already reserved",
			}
		}
		return &workshop.PersistenceError{Op: "insert appointment", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &workshop.PersistenceError{Op: "insert appointment", Err: err}
	}
	a.ID = id
	return nil
}

func (s *Store) FindAppointment(ctx context.Context, id int64) (*workshop.Appointment, error) {
	rows, err := s.queryAppointments(ctx, appointmentSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) FindAppointmentsByDate(ctx context.Context, date time.Time) ([]workshop.Appointment, error) {
	return s.queryAppointments(ctx,
		appointmentSelect+" WHERE date = ? ORDER BY slot ASC", dayString(date))
}

func (s *Store) FindReservedSlots(ctx context.Context, date time.Time) (map[schedule.TimeOfDay]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT slot FROM appointments WHERE date = ?", dayString(date))
	if err != nil {
		return nil, &workshop.PersistenceError{Op: "find reserved slots", Err: err}
	}
	defer rows.Close()

	reserved := make(map[schedule.TimeOfDay]bool)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, &workshop.PersistenceError{Op: "find reserved slots", Err: err}
		}
		reserved[schedule.TimeOfDay(slot)] = true
	}
	return reserved, rows.Err()
}

func (s *Store) ListAppointments(ctx context.Context, state *workshop.State) ([]workshop.Appointment, error) {
	// Planner order: date desc, then slot.
	if state == nil {
		return s.queryAppointments(ctx, appointmentSelect+" ORDER BY date DESC, slot ASC")
	}
	return s.queryAppointments(ctx,
		appointmentSelect+" WHERE state = ? ORDER BY date DESC, slot ASC", string(*state))
}

const appointmentSelect = `
	SELECT id, name, phone, email, make, model, plate, year, date, slot,
	       description, state, reviewed, created_at, updated_at
	FROM appointments`

func (s *Store) queryAppointments(ctx context.Context, query string, args ...any) ([]workshop.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &workshop.PersistenceError{Op: "query appointments", Err: err}
	}
	defer rows.Close()

	var out []workshop.Appointment
	for rows.Next() {
		var (
			a          workshop.Appointment
			email      sql.NullString
			date, slot string
			state      string
			created    string
			updated    string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &email, &a.Make, &a.Model,
			&a.Plate, &a.Year, &date, &slot, &a.Description, &state, &a.Reviewed,
			&created, &updated); err != nil {
			return nil, &workshop.PersistenceError{Op: "scan appointment", Err: err}
		}
		a.Email = email.String
		a.Date = parseDay(date)
		a.Slot = schedule.TimeOfDay(slot)
		a.State = workshop.State(state)
		a.CreatedAt = parseTime(created)
		a.UpdatedAt = parseTime(updated)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// WALK-IN ENTRIES (workshop.Store)
// =============================================================================

// InsertEntry writes the walk-in; the partial unique plate index enforces
// the one-active-entry invariant.
func (s *Store) InsertEntry(ctx context.Context, e *workshop.WorkshopEntry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries
		(name, phone, email, make, model, plate, year, description,
		 state, reviewed, checked_in_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Phone, nullString(e.Email),
		e.Make, e.Model, e.Plate, nullInt(e.Year), e.Description,
		string(e.State), e.Reviewed,
		timeString(e.CheckedInAt), nullTime(e.FinishedAt),
		timeString(e.CreatedAt), timeString(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &workshop.ConflictError{
				Resource: "plate",
				Detail:   "an active entry already exists for plate " + e.Plate,
			}
		}
		return &workshop.PersistenceError{Op: "insert entry", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return &workshop.PersistenceError{Op: "insert entry", Err: err}
	}
	e.ID = id
	return nil
}

func (s *Store) FindEntry(ctx context.Context, id int64) (*workshop.WorkshopEntry, error) {
	rows, err := s.queryEntries(ctx, entrySelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) FindActiveEntryByPlate(ctx context.Context, plate string) (*workshop.WorkshopEntry, error) {
	rows, err := s.queryEntries(ctx,
		entrySelect+" WHERE plate = ? AND state IN ('pending', 'in_progress')", plate)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) ListEntries(ctx context.Context, state *workshop.State) ([]workshop.WorkshopEntry, error) {
	if state == nil {
		return s.queryEntries(ctx, entrySelect+" ORDER BY checked_in_at DESC")
	}
	return s.queryEntries(ctx,
		entrySelect+" WHERE state = ? ORDER BY checked_in_at DESC", string(*state))
}

const entrySelect = `
	SELECT id, name, phone, email, make, model, plate, year, description,
	       state, reviewed, checked_in_at, finished_at, created_at, updated_at
	FROM entries`

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]workshop.WorkshopEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &workshop.PersistenceError{Op: "query entries", Err: err}
	}
	defer rows.Close()

	var out []workshop.WorkshopEntry
	for rows.Next() {
		var (
			e           workshop.WorkshopEntry
			email, desc sql.NullString
			year        sql.NullInt64
			state       string
			checkedIn   string
			finished    sql.NullString
			created     string
			updated     string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &email, &e.Make, &e.Model,
			&e.Plate, &year, &desc, &state, &e.Reviewed, &checkedIn, &finished,
			&created, &updated); err != nil {
			return nil, &workshop.PersistenceError{Op: "scan entry", Err: err}
		}
		e.Email = email.String
		e.Year = int(year.Int64)
		e.Description = desc.String
		e.State = workshop.State(state)
		e.CheckedInAt = parseTime(checkedIn)
		if finished.Valid {
			t := parseTime(finished.String)
			e.FinishedAt = &t
		}
		e.CreatedAt = parseTime(created)
		e.UpdatedAt = parseTime(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// WORKFLOW UPDATES (workshop.Store)
// =============================================================================

func (s *Store) UpdateWorkItemState(ctx context.Context, id workshop.ItemID, state workshop.State, reviewed bool, finishedAt *time.Time, updatedAt time.Time) error {
	origin, nativeID, err := id.Split()
	if err != nil {
		return err
	}

	var res sql.Result
	switch origin {
	case workshop.OriginAppointment:
		res, err = s.db.ExecContext(ctx,
			"UPDATE appointments SET state = ?, reviewed = ?, updated_at = ? WHERE id = ?",
			string(state), reviewed, timeString(updatedAt), nativeID)
	default:
		res, err = s.db.ExecContext(ctx,
			"UPDATE entries SET state = ?, reviewed = ?, finished_at = COALESCE(?, finished_at), updated_at = ? WHERE id = ?",
			string(state), reviewed, nullTime(finishedAt), timeString(updatedAt), nativeID)
	}
	if err != nil {
		// Moving an entry back into an active state can collide with the
		// partial unique plate index.
		if isUniqueConstraintError(err) {
			return &workshop.ConflictError{
				Resource: "plate",
				Detail:   "an active entry already exists for this plate",
			}
		}
		return &workshop.PersistenceError{Op: "update work item state", Err: err}
	}
	return requireRow(res, id)
}

func (s *Store) UpdateReviewedFlag(ctx context.Context, id workshop.ItemID, reviewed bool, updatedAt time.Time) error {
	origin, nativeID, err := id.Split()
	if err != nil {
		return err
	}

	table := "entries"
	if origin == workshop.OriginAppointment {
		table = "appointments"
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE "+table+" SET reviewed = ?, updated_at = ? WHERE id = ?",
		reviewed, timeString(updatedAt), nativeID)
	if err != nil {
		return &workshop.PersistenceError{Op: "update reviewed flag", Err: err}
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id workshop.ItemID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &workshop.PersistenceError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return &workshop.NotFoundError{Kind: "work item", ID: string(id)}
	}
	return nil
}

// =============================================================================
// INVOICES (workshop.Store)
// =============================================================================

// invoiceLines is the JSON shape of the frozen draft lines.
type invoiceLines struct {
	Labor []billing.LaborLine `json:"labor"`
	Parts []billing.PartLine  `json:"parts"`
}

// InsertInvoice writes the frozen invoice; the unique work_item_id column
// makes acceptance idempotent.
func (s *Store) InsertInvoice(ctx context.Context, inv *billing.Invoice) error {
	linesJSON, err := json.Marshal(invoiceLines{Labor: inv.Labor, Parts: inv.Parts})
	if err != nil {
		return &workshop.PersistenceError{Op: "marshal invoice lines", Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices
		(number, work_item_id, origin, description, lines_json,
		 subtotal, discount, tax, total, actor, issued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Number, inv.WorkItemID, inv.Origin, inv.Description, string(linesJSON),
		inv.Totals.Subtotal.String(), inv.Totals.Discount.String(),
		inv.Totals.Tax.String(), inv.Totals.Total.String(),
		inv.Actor, timeString(inv.IssuedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &workshop.ConflictError{
				Resource: "invoice",
				Detail:   "quote for " + inv.WorkItemID + " already accepted",
			}
		}
		return &workshop.PersistenceError{Op: "insert invoice", Err: err}
	}
	return nil
}

func (s *Store) FindInvoiceByItem(ctx context.Context, id workshop.ItemID) (*billing.Invoice, error) {
	rows, err := s.queryInvoices(ctx, invoiceSelect+" WHERE work_item_id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]billing.Invoice, error) {
	return s.queryInvoices(ctx, invoiceSelect+" ORDER BY issued_at DESC")
}

const invoiceSelect = `
	SELECT number, work_item_id, origin, description, lines_json,
	       subtotal, discount, tax, total, actor, issued_at
	FROM invoices`

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]billing.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &workshop.PersistenceError{Op: "query invoices", Err: err}
	}
	defer rows.Close()

	var out []billing.Invoice
	for rows.Next() {
		var (
			inv                           billing.Invoice
			desc                          sql.NullString
			linesJSON                     string
			subtotal, discount, tax, totl string
			issued                        string
		)
		if err := rows.Scan(&inv.Number, &inv.WorkItemID, &inv.Origin, &desc,
			&linesJSON, &subtotal, &discount, &tax, &totl, &inv.Actor, &issued); err != nil {
			return nil, &workshop.PersistenceError{Op: "scan invoice", Err: err}
		}

		var lines invoiceLines
		if err := json.Unmarshal([]byte(linesJSON), &lines); err != nil {
			return nil, &workshop.PersistenceError{Op: "unmarshal invoice lines", Err: err}
		}

		inv.Description = desc.String
		inv.Labor = lines.Labor
		inv.Parts = lines.Parts
		inv.Totals = billing.Totals{
			Subtotal: mustDecimal(subtotal),
			Discount: mustDecimal(discount),
			Tax:      mustDecimal(tax),
			Total:    mustDecimal(totl),
		}
		inv.IssuedAt = parseTime(issued)
		out = append(out, inv)
	}
	return out, rows.Err()
}

// =============================================================================
// AUDIT LOG (audit.Store)
// =============================================================================

func (s *Store) AppendAuditEntry(ctx context.Context, e audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log
		(id, timestamp, actor, action, detail, item_kind, item_id,
		 old_state, new_state, vehicle_info, customer_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, timeString(e.Timestamp), e.Actor, string(e.Action), e.Detail,
		nullString(e.ItemKind), nullString(e.ItemID),
		nullString(e.OldState), nullString(e.NewState),
		nullString(e.VehicleInfo), nullString(e.CustomerInfo),
	)
	if err != nil {
		return &workshop.PersistenceError{Op: "append audit entry", Err: err}
	}
	return nil
}

func (s *Store) QueryAuditEntries(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	query := `
		SELECT id, timestamp, actor, action, detail, item_kind, item_id,
		       old_state, new_state, vehicle_info, customer_info
		FROM audit_log`
	var (
		conds []string
		args  []any
	)
	if filter.ItemID != nil {
		conds = append(conds, "item_id = ?")
		args = append(args, *filter.ItemID)
	}
	if filter.Actor != nil {
		conds = append(conds, "actor = ?")
		args = append(args, *filter.Actor)
	}
	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		conds = append(conds, "action IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &workshop.PersistenceError{Op: "query audit log", Err: err}
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var (
			e                          audit.Entry
			ts                         string
			action                     string
			detail                     sql.NullString
			kind, itemID, oldSt, newSt sql.NullString
			vehicle, customer          sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &e.Actor, &action, &detail, &kind,
			&itemID, &oldSt, &newSt, &vehicle, &customer); err != nil {
			return nil, &workshop.PersistenceError{Op: "scan audit entry", Err: err}
		}
		e.Timestamp = parseTime(ts)
		e.Action = audit.Action(action)
		e.Detail = detail.String
		e.ItemKind = kind.String
		e.ItemID = itemID.String
		e.OldState = oldSt.String
		e.NewState = newSt.String
		e.VehicleInfo = vehicle.String
		e.CustomerInfo = customer.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reset clears all data. Dev/demo environments only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"appointments", "entries", "invoices", "audit_log"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &workshop.PersistenceError{Op: "reset " + table, Err: err}
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func dayString(t time.Time) string  { return t.Format("2006-01-02") }
func timeString(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: timeString(*t), Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
