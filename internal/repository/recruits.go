package repository

import (
	"context"
	"time"

	"github.com/xingyao-live/pilot-manager/backend/internal/domain"
)

// recruits 表的列很多，列清单和扫描目标集中维护，避免五处查询各抄一遍。
const recruitColumns = `
	id, pilot_id, recruiter_id, appointment_time, channel, introduction_fee, remarks, status,
	interview_decision, interview_decision_maker, interview_decision_time,
	scheduled_training_time, scheduled_training_decision_maker, scheduled_training_decision_time,
	training_decision, training_decision_maker, training_decision_time,
	scheduled_broadcast_time, scheduled_broadcast_decision_maker, scheduled_broadcast_decision_time,
	broadcast_decision, broadcast_decision_maker, broadcast_decision_time,
	legacy_training_decision, legacy_training_decision_maker, legacy_training_decision_time, legacy_training_time,
	legacy_final_decision, legacy_final_decision_maker, legacy_final_decision_time,
	created_at, updated_at
`

func recruitScanDst(rec *domain.Recruit) []any {
	return []any{
		&rec.ID, &rec.PilotID, &rec.RecruiterID, &rec.AppointmentTime, &rec.Channel, &rec.IntroductionFee, &rec.Remarks, &rec.Status,
		&rec.InterviewDecision, &rec.InterviewDecisionMaker, &rec.InterviewDecisionTime,
		&rec.ScheduledTrainingTime, &rec.ScheduledTrainingDecisionMaker, &rec.ScheduledTrainingDecisionTime,
		&rec.TrainingDecision, &rec.TrainingDecisionMaker, &rec.TrainingDecisionTime,
		&rec.ScheduledBroadcastTime, &rec.ScheduledBroadcastDecisionMaker, &rec.ScheduledBroadcastDecisionTime,
		&rec.BroadcastDecision, &rec.BroadcastDecisionMaker, &rec.BroadcastDecisionTime,
		&rec.LegacyTrainingDecision, &rec.LegacyTrainingDecisionMaker, &rec.LegacyTrainingDecisionTime, &rec.LegacyTrainingTime,
		&rec.LegacyFinalDecision, &rec.LegacyFinalDecisionMaker, &rec.LegacyFinalDecisionTime,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
}

func (r *Repository) scanRecruits(ctx context.Context, query string, args ...any) ([]*domain.Recruit, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recruits := make([]*domain.Recruit, 0)
	for rows.Next() {
		rec := &domain.Recruit{}
		if err := rows.Scan(recruitScanDst(rec)...); err != nil {
			return nil, err
		}
		recruits = append(recruits, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recruits, nil
}

func (r *Repository) GetRecruitByID(id int64) (*domain.Recruit, error) {
	query := `
		SELECT ` + recruitColumns + `
		FROM recruits WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rec := &domain.Recruit{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(recruitScanDst(rec)...); err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *Repository) GetAllRecruits() ([]*domain.Recruit, error) {
	query := `
		SELECT ` + recruitColumns + `
		FROM recruits
		ORDER BY appointment_time DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.scanRecruits(ctx, query)
}

func (r *Repository) GetRecruitsByPilot(pilotID int64) ([]*domain.Recruit, error) {
	query := `
		SELECT ` + recruitColumns + `
		FROM recruits
		WHERE pilot_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.scanRecruits(ctx, query, pilotID)
}

// GetInProgressRecruits 取出所有尚未结束的招募，包含旧版状态的记录。
func (r *Repository) GetInProgressRecruits() ([]*domain.Recruit, error) {
	query := `
		SELECT ` + recruitColumns + `
		FROM recruits
		WHERE status != '已结束'
		ORDER BY appointment_time ASC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.scanRecruits(ctx, query)
}

func (r *Repository) HasActiveRecruit(pilotID int64) (bool, error) {
	exists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM recruits WHERE pilot_id = $1 AND status != '已结束')
	`
	if err := r.dbpool.QueryRowContext(ctx, query, pilotID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) CreateRecruit(rec *domain.Recruit) error {
	query := `
		INSERT INTO recruits (pilot_id, recruiter_id, appointment_time, channel, introduction_fee, remarks, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{rec.PilotID, rec.RecruiterID, rec.AppointmentTime, rec.Channel, rec.IntroductionFee, rec.Remarks, rec.Status}
	dst := []any{&rec.ID, &rec.CreatedAt, &rec.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// InsertLegacyRecruit 完整插入一条带旧版字段的招募记录，
// 只用于导入迁移前的历史数据，业务代码不要调用。
func (r *Repository) InsertLegacyRecruit(rec *domain.Recruit) error {
	query := `
		INSERT INTO recruits (
			pilot_id, recruiter_id, appointment_time, channel, introduction_fee, remarks, status,
			legacy_training_decision, legacy_training_decision_maker, legacy_training_decision_time, legacy_training_time,
			legacy_final_decision, legacy_final_decision_maker, legacy_final_decision_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		rec.PilotID, rec.RecruiterID, rec.AppointmentTime, rec.Channel, rec.IntroductionFee, rec.Remarks, rec.Status,
		rec.LegacyTrainingDecision, rec.LegacyTrainingDecisionMaker, rec.LegacyTrainingDecisionTime, rec.LegacyTrainingTime,
		rec.LegacyFinalDecision, rec.LegacyFinalDecisionMaker, rec.LegacyFinalDecisionTime,
	}
	dst := []any{&rec.ID, &rec.CreatedAt, &rec.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateRecruit(rec *domain.Recruit) error {
	// 旧版字段是只读的历史数据，更新语句刻意不碰它们
	query := `
		UPDATE recruits
		SET
			recruiter_id = $1,
			appointment_time = $2,
			channel = $3,
			introduction_fee = $4,
			remarks = $5,
			status = $6,
			interview_decision = $7,
			interview_decision_maker = $8,
			interview_decision_time = $9,
			scheduled_training_time = $10,
			scheduled_training_decision_maker = $11,
			scheduled_training_decision_time = $12,
			training_decision = $13,
			training_decision_maker = $14,
			training_decision_time = $15,
			scheduled_broadcast_time = $16,
			scheduled_broadcast_decision_maker = $17,
			scheduled_broadcast_decision_time = $18,
			broadcast_decision = $19,
			broadcast_decision_maker = $20,
			broadcast_decision_time = $21,
			updated_at = NOW()
		WHERE id = $22
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		rec.RecruiterID, rec.AppointmentTime, rec.Channel, rec.IntroductionFee, rec.Remarks, rec.Status,
		rec.InterviewDecision, rec.InterviewDecisionMaker, rec.InterviewDecisionTime,
		rec.ScheduledTrainingTime, rec.ScheduledTrainingDecisionMaker, rec.ScheduledTrainingDecisionTime,
		rec.TrainingDecision, rec.TrainingDecisionMaker, rec.TrainingDecisionTime,
		rec.ScheduledBroadcastTime, rec.ScheduledBroadcastDecisionMaker, rec.ScheduledBroadcastDecisionTime,
		rec.BroadcastDecision, rec.BroadcastDecisionMaker, rec.BroadcastDecisionTime,
		rec.ID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rec.UpdatedAt); err != nil {
		return err
	}

	return nil
}
