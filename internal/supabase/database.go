package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
)

// DatabaseClient talks to the Supabase Postgres directly. Row-level
// scoping is enforced in every query by the practitioner id.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

// --- profiles ---

func (d *DatabaseClient) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, created_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (d *DatabaseClient) CreateProfile(ctx context.Context, p *models.Profile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, created_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.Email, p.FullName, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpdateProfileName(ctx context.Context, id uuid.UUID, fullName string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $1
		WHERE id = $2
	`, fullName, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

// --- patients ---

func (d *DatabaseClient) CreatePatient(ctx context.Context, p *models.Patient) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO patients (id, practitioner_id, first_name, last_name, email, phone, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.PractitionerID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (d *DatabaseClient) DeletePatient(ctx context.Context, id uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM patients
		WHERE id = $1
	`, id)
	return err
}

// --- orders ---

func (d *DatabaseClient) CreateOrder(ctx context.Context, o *models.Order) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO orders (id, practitioner_id, patient_id, type, status, additional_info, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.PractitionerID, o.PatientID, o.Type, o.Status, o.AdditionalInfo, o.DueDate, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.OrderSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT o.id, o.practitioner_id, o.patient_id, o.type, o.status,
		       o.additional_info, o.due_date, o.created_at, o.updated_at,
		       p.first_name, p.last_name
		FROM orders o
		JOIN patients p ON p.id = o.patient_id
		WHERE o.practitioner_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		err := rows.Scan(
			&s.ID, &s.PractitionerID, &s.PatientID, &s.Type, &s.Status,
			&s.AdditionalInfo, &s.DueDate, &s.CreatedAt, &s.UpdatedAt,
			&s.PatientFirstName, &s.PatientLastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DatabaseClient) GetOrderDetail(ctx context.Context, orderID, userID uuid.UUID) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	err := d.db.QueryRowContext(ctx, `
		SELECT o.id, o.practitioner_id, o.patient_id, o.type, o.status,
		       o.additional_info, o.due_date, o.created_at, o.updated_at,
		       p.id, p.practitioner_id, p.first_name, p.last_name,
		       p.email, p.phone, p.date_of_birth, p.created_at
		FROM orders o
		JOIN patients p ON p.id = o.patient_id
		WHERE o.id = $1 AND o.practitioner_id = $2
	`, orderID, userID).Scan(
		&detail.Order.ID, &detail.Order.PractitionerID, &detail.Order.PatientID,
		&detail.Order.Type, &detail.Order.Status, &detail.Order.AdditionalInfo,
		&detail.Order.DueDate, &detail.Order.CreatedAt, &detail.Order.UpdatedAt,
		&detail.Patient.ID, &detail.Patient.PractitionerID, &detail.Patient.FirstName,
		&detail.Patient.LastName, &detail.Patient.Email, &detail.Patient.Phone,
		&detail.Patient.DateOfBirth, &detail.Patient.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	scans, err := d.listScans(ctx, orderID)
	if err != nil {
		return nil, err
	}
	detail.Scans = scans
	return &detail, nil
}

func (d *DatabaseClient) ListRecentOrders(ctx context.Context, userID uuid.UUID, limit int) ([]models.OrderSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT o.id, o.practitioner_id, o.patient_id, o.type, o.status,
		       o.additional_info, o.due_date, o.created_at, o.updated_at,
		       p.first_name, p.last_name
		FROM orders o
		JOIN patients p ON p.id = o.patient_id
		WHERE o.practitioner_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer rows.Close()

	var out []models.OrderSummary
	for rows.Next() {
		var s models.OrderSummary
		err := rows.Scan(
			&s.ID, &s.PractitionerID, &s.PatientID, &s.Type, &s.Status,
			&s.AdditionalInfo, &s.DueDate, &s.CreatedAt, &s.UpdatedAt,
			&s.PatientFirstName, &s.PatientLastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountActiveOrders counts every order that is still moving through the
// lab, i.e. neither completed nor cancelled.
func (d *DatabaseClient) CountActiveOrders(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE practitioner_id = $1 AND status NOT IN ('completed', 'cancelled')
	`, userID).Scan(&n)
	return n, err
}

func (d *DatabaseClient) CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE practitioner_id = $1 AND status = 'completed' AND updated_at >= $2
	`, userID, since).Scan(&n)
	return n, err
}

func (d *DatabaseClient) CountDueAfter(ctx context.Context, userID uuid.UUID, after time.Time) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE practitioner_id = $1 AND due_date >= $2 AND status NOT IN ('completed', 'cancelled')
	`, userID, after).Scan(&n)
	return n, err
}

// --- scans ---

// CreateScan inserts the scan row only when the order belongs to the
// practitioner; otherwise it reports not found.
func (d *DatabaseClient) CreateScan(ctx context.Context, userID uuid.UUID, s *models.Scan) error {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO scans (id, order_id, file_path, uploaded_at)
		SELECT $1, o.id, $3, $4
		FROM orders o
		WHERE o.id = $2 AND o.practitioner_id = $5
	`, s.ID, s.OrderID, s.FilePath, s.UploadedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (d *DatabaseClient) ListScans(ctx context.Context, orderID, userID uuid.UUID) ([]models.Scan, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND practitioner_id = $2)
	`, orderID, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return nil, orders.ErrNotFound
	}
	return d.listScans(ctx, orderID)
}

func (d *DatabaseClient) listScans(ctx context.Context, orderID uuid.UUID) ([]models.Scan, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, order_id, file_path, uploaded_at
		FROM scans
		WHERE order_id = $1
		ORDER BY uploaded_at DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var out []models.Scan
	for rows.Next() {
		var s models.Scan
		if err := rows.Scan(&s.ID, &s.OrderID, &s.FilePath, &s.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// --- messages ---

func (d *DatabaseClient) ListThreads(ctx context.Context, userID uuid.UUID) ([]models.MessageThread, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT ON (m.thread_id)
		       m.thread_id,
		       COALESCE(p.full_name, p.email, 'Lab Team'),
		       m.body,
		       m.sent_at,
		       EXISTS (
		           SELECT 1 FROM messages u
		           WHERE u.thread_id = m.thread_id
		             AND u.recipient_id = $1 AND NOT u.read
		       )
		FROM messages m
		LEFT JOIN profiles p
		       ON p.id = CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.thread_id, m.sent_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var out []models.MessageThread
	for rows.Next() {
		var t models.MessageThread
		if err := rows.Scan(&t.ThreadID, &t.CounterpartName, &t.LastMessage, &t.LastSentAt, &t.Unread); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListMessages returns the thread's messages oldest first and marks the
// user's unread messages in it as read.
func (d *DatabaseClient) ListMessages(ctx context.Context, threadID, userID uuid.UUID) ([]models.Message, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, thread_id, sender_id, body, read, sent_at
		FROM messages
		WHERE thread_id = $1 AND (sender_id = $2 OR recipient_id = $2)
		ORDER BY sent_at ASC
	`, threadID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Body, &m.Read, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, orders.ErrNotFound
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE thread_id = $1 AND recipient_id = $2 AND NOT read
	`, threadID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark thread read: %w", err)
	}
	return out, nil
}

func (d *DatabaseClient) CreateMessage(ctx context.Context, m *models.Message, recipientID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, sender_id, recipient_id, body, read, sent_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, m.ID, m.ThreadID, m.SenderID, recipientID, m.Body, m.SentAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ThreadRecipient resolves who the other participant of a thread is
// from the user's point of view.
func (d *DatabaseClient) ThreadRecipient(ctx context.Context, threadID, userID uuid.UUID) (uuid.UUID, error) {
	var recipient uuid.UUID
	err := d.db.QueryRowContext(ctx, `
		SELECT CASE WHEN sender_id = $2 THEN recipient_id ELSE sender_id END
		FROM messages
		WHERE thread_id = $1 AND (sender_id = $2 OR recipient_id = $2)
		ORDER BY sent_at DESC
		LIMIT 1
	`, threadID, userID).Scan(&recipient)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, orders.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve thread recipient: %w", err)
	}
	return recipient, nil
}

// --- learning ---

func (d *DatabaseClient) ListLearningResources(ctx context.Context) ([]models.LearningResource, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, category, title, description, created_at
		FROM learning_resources
		ORDER BY category, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning resources: %w", err)
	}
	defer rows.Close()

	var out []models.LearningResource
	for rows.Next() {
		var r models.LearningResource
		if err := rows.Scan(&r.ID, &r.Category, &r.Title, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan learning resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
