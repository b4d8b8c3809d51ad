package repository

import (
	"context"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

func (r *Repository) GetPilotByID(id int64) (*domain.Pilot, error) {
	query := `
		SELECT nickname, real_name, gender, hometown, birth_year, owner_id, platform, work_mode, rank, status, created_at, updated_at
		FROM pilots WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	pilot := &domain.Pilot{
		ID: id,
	}

	dst := []any{&pilot.Nickname, &pilot.RealName, &pilot.Gender, &pilot.Hometown, &pilot.BirthYear, &pilot.OwnerID, &pilot.Platform, &pilot.WorkMode, &pilot.Rank, &pilot.Status, &pilot.CreatedAt, &pilot.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return pilot, nil
}

func (r *Repository) GetAllPilots() ([]*domain.Pilot, error) {
	query := `
		SELECT id, nickname, real_name, gender, hometown, birth_year, owner_id, platform, work_mode, rank, status, created_at, updated_at
		FROM pilots
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pilots := make([]*domain.Pilot, 0)
	for rows.Next() {
		pilot := &domain.Pilot{}
		dst := []any{&pilot.ID, &pilot.Nickname, &pilot.RealName, &pilot.Gender, &pilot.Hometown, &pilot.BirthYear, &pilot.OwnerID, &pilot.Platform, &pilot.WorkMode, &pilot.Rank, &pilot.Status, &pilot.CreatedAt, &pilot.UpdatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		pilots = append(pilots, pilot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pilots, nil
}

// SearchPilots 按昵称或姓名模糊搜索。
func (r *Repository) SearchPilots(keyword string) ([]*domain.Pilot, error) {
	query := `
		SELECT id, nickname, real_name, gender, hometown, birth_year, owner_id, platform, work_mode, rank, status, created_at, updated_at
		FROM pilots
		WHERE nickname ILIKE '%' || $1 || '%' OR real_name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT 100
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pilots := make([]*domain.Pilot, 0)
	for rows.Next() {
		pilot := &domain.Pilot{}
		dst := []any{&pilot.ID, &pilot.Nickname, &pilot.RealName, &pilot.Gender, &pilot.Hometown, &pilot.BirthYear, &pilot.OwnerID, &pilot.Platform, &pilot.WorkMode, &pilot.Rank, &pilot.Status, &pilot.CreatedAt, &pilot.UpdatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		pilots = append(pilots, pilot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pilots, nil
}

func (r *Repository) CreatePilot(pilot *domain.Pilot) error {
	query := `
		INSERT INTO pilots (nickname, real_name, gender, hometown, birth_year, owner_id, platform, work_mode, rank, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{pilot.Nickname, pilot.RealName, pilot.Gender, pilot.Hometown, pilot.BirthYear, pilot.OwnerID, pilot.Platform, pilot.WorkMode, pilot.Rank, pilot.Status}
	dst := []any{&pilot.ID, &pilot.CreatedAt, &pilot.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdatePilot(pilot *domain.Pilot) error {
	query := `
		UPDATE pilots
		SET
			nickname = $1,
			real_name = $2,
			gender = $3,
			hometown = $4,
			birth_year = $5,
			owner_id = $6,
			platform = $7,
			work_mode = $8,
			rank = $9,
			status = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{pilot.Nickname, pilot.RealName, pilot.Gender, pilot.Hometown, pilot.BirthYear, pilot.OwnerID, pilot.Platform, pilot.WorkMode, pilot.Rank, pilot.Status, pilot.ID}
	dst := []any{&pilot.CreatedAt, &pilot.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePilot(id int64) error {
	query := `
		DELETE FROM pilots WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
