package repository

import (
	"context"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

func (r *Repository) InsertRecruitChangeLogs(logs []*domain.RecruitChangeLog) error {
	query := `
		INSERT INTO recruit_change_logs (recruit_id, user_id, field_name, old_value, new_value, change_time, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	for _, entry := range logs {
		args := []any{entry.RecruitID, entry.UserID, entry.FieldName, entry.OldValue, entry.NewValue, entry.ChangeTime, entry.IPAddress}
		if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetRecruitChangeLogs(recruitID int64) ([]*domain.RecruitChangeLog, error) {
	query := `
		SELECT id, recruit_id, user_id, field_name, old_value, new_value, change_time, ip_address
		FROM recruit_change_logs
		WHERE recruit_id = $1
		ORDER BY change_time DESC
		LIMIT 100
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, recruitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.RecruitChangeLog, 0)
	for rows.Next() {
		entry := &domain.RecruitChangeLog{}
		dst := []any{&entry.ID, &entry.RecruitID, &entry.UserID, &entry.FieldName, &entry.OldValue, &entry.NewValue, &entry.ChangeTime, &entry.IPAddress}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *Repository) InsertPilotChangeLogs(logs []*domain.PilotChangeLog) error {
	query := `
		INSERT INTO pilot_change_logs (pilot_id, user_id, field_name, old_value, new_value, change_time, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	for _, entry := range logs {
		args := []any{entry.PilotID, entry.UserID, entry.FieldName, entry.OldValue, entry.NewValue, entry.ChangeTime, entry.IPAddress}
		if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetPilotChangeLogs(pilotID int64) ([]*domain.PilotChangeLog, error) {
	query := `
		SELECT id, pilot_id, user_id, field_name, old_value, new_value, change_time, ip_address
		FROM pilot_change_logs
		WHERE pilot_id = $1
		ORDER BY change_time DESC
		LIMIT 100
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, pilotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.PilotChangeLog, 0)
	for rows.Next() {
		entry := &domain.PilotChangeLog{}
		dst := []any{&entry.ID, &entry.PilotID, &entry.UserID, &entry.FieldName, &entry.OldValue, &entry.NewValue, &entry.ChangeTime, &entry.IPAddress}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *Repository) InsertRecruitOperationLog(entry *domain.RecruitOperationLog) error {
	query := `
		INSERT INTO recruit_operation_logs (user_id, operation_type, recruit_id, pilot_id, operation_time, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{entry.UserID, entry.OperationType, entry.RecruitID, entry.PilotID, entry.OperationTime, entry.IPAddress}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRecruitOperationLogs(recruitID int64) ([]*domain.RecruitOperationLog, error) {
	query := `
		SELECT id, user_id, operation_type, recruit_id, pilot_id, operation_time, ip_address
		FROM recruit_operation_logs
		WHERE recruit_id = $1
		ORDER BY operation_time DESC
		LIMIT 100
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, recruitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.RecruitOperationLog, 0)
	for rows.Next() {
		entry := &domain.RecruitOperationLog{}
		dst := []any{&entry.ID, &entry.UserID, &entry.OperationType, &entry.RecruitID, &entry.PilotID, &entry.OperationTime, &entry.IPAddress}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
