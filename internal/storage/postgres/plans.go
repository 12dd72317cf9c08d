package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPlansStorage - Postgres storage для активных планов
type PostgresPlansStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresPlansStorage создаёт новое Postgres хранилище планов
func NewPostgresPlansStorage(pool *pgxpool.Pool) *PostgresPlansStorage {
	return &PostgresPlansStorage{pool: pool}
}

const planColumns = `id, user_key, profile, maintenance_kcal, target_kcal, total_calories, created_at, updated_at`

const itemColumns = `id, plan_id, slot, position, meal_id, name, calories, payload, created_at, updated_at`

func (s *PostgresPlansStorage) GetActivePlan(ctx context.Context, userKey string) (storage.StoredPlan, []storage.PlanItem, bool, error) {
	planQuery := `
		SELECT ` + planColumns + `
		FROM meal_plans
		WHERE user_key = $1
	`

	var plan storage.StoredPlan
	err := s.pool.QueryRow(ctx, planQuery, userKey).Scan(
		&plan.ID,
		&plan.UserKey,
		&plan.Profile,
		&plan.MaintenanceKcal,
		&plan.TargetKcal,
		&plan.TotalCalories,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if isNoRows(err) {
		return storage.StoredPlan{}, nil, false, nil
	}
	if err != nil {
		return storage.StoredPlan{}, nil, false, fmt.Errorf("failed to get active meal plan: %w", err)
	}

	items, err := listItems(ctx, s.pool, plan.ID)
	if err != nil {
		return storage.StoredPlan{}, nil, false, err
	}

	return plan, items, true, nil
}

func (s *PostgresPlansStorage) ReplaceActivePlan(ctx context.Context, upsert storage.StoredPlanUpsert, itemsUpsert []storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Удаляем предыдущий план (CASCADE удалит позиции)
	if _, err := tx.Exec(ctx, `DELETE FROM meal_plans WHERE user_key = $1`, upsert.UserKey); err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to delete existing meal plan: %w", err)
	}

	planQuery := `
		INSERT INTO meal_plans (id, user_key, profile, maintenance_kcal, target_kcal, total_calories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + planColumns

	var plan storage.StoredPlan
	err = tx.QueryRow(ctx, planQuery,
		uuid.New(),
		upsert.UserKey,
		upsert.Profile,
		upsert.MaintenanceKcal,
		upsert.TargetKcal,
		upsert.TotalCalories,
	).Scan(
		&plan.ID,
		&plan.UserKey,
		&plan.Profile,
		&plan.MaintenanceKcal,
		&plan.TargetKcal,
		&plan.TotalCalories,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to create meal plan: %w", err)
	}

	itemQuery := `
		INSERT INTO meal_plan_items (id, plan_id, slot, position, meal_id, name, calories, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	for _, itemReq := range itemsUpsert {
		_, err = tx.Exec(ctx, itemQuery,
			uuid.New(),
			plan.ID,
			itemReq.Slot,
			itemReq.Position,
			itemReq.MealID,
			itemReq.Name,
			itemReq.Calories,
			itemReq.Payload,
		)
		if err != nil {
			return storage.StoredPlan{}, nil, fmt.Errorf("failed to insert meal plan item: %w", err)
		}
	}

	items, err := listItems(ctx, tx, plan.ID)
	if err != nil {
		return storage.StoredPlan{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return plan, items, nil
}

func (s *PostgresPlansStorage) ReplacePlanItem(ctx context.Context, planID uuid.UUID, itemReq storage.PlanItemUpsert) (storage.StoredPlan, []storage.PlanItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Concurrent swaps on one plan queue here so the total below sees every committed item.
	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM meal_plans WHERE id = $1 FOR UPDATE`, planID).Scan(&lockedID)
	if isNoRows(err) {
		return storage.StoredPlan{}, nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to lock meal plan: %w", err)
	}

	itemQuery := `
		UPDATE meal_plan_items
		SET meal_id = $4, name = $5, calories = $6, payload = $7, updated_at = NOW()
		WHERE plan_id = $1 AND slot = $2 AND position = $3
	`
	result, err := tx.Exec(ctx, itemQuery,
		planID,
		itemReq.Slot,
		itemReq.Position,
		itemReq.MealID,
		itemReq.Name,
		itemReq.Calories,
		itemReq.Payload,
	)
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to update meal plan item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.StoredPlan{}, nil, fmt.Errorf("plan item %s[%d]: %w", itemReq.Slot, itemReq.Position, ErrNotFound)
	}

	planQuery := `
		UPDATE meal_plans
		SET total_calories = (
				SELECT COALESCE(SUM(calories), 0) FROM meal_plan_items WHERE plan_id = $1
			),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns

	var plan storage.StoredPlan
	err = tx.QueryRow(ctx, planQuery, planID).Scan(
		&plan.ID,
		&plan.UserKey,
		&plan.Profile,
		&plan.MaintenanceKcal,
		&plan.TargetKcal,
		&plan.TotalCalories,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if isNoRows(err) {
		return storage.StoredPlan{}, nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to update meal plan: %w", err)
	}

	items, err := listItems(ctx, tx, planID)
	if err != nil {
		return storage.StoredPlan{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.StoredPlan{}, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return plan, items, nil
}

func (s *PostgresPlansStorage) DeleteActivePlan(ctx context.Context, userKey string) error {
	// No error if nothing was deleted (no active plan)
	if _, err := s.pool.Exec(ctx, `DELETE FROM meal_plans WHERE user_key = $1`, userKey); err != nil {
		return fmt.Errorf("failed to delete active meal plan: %w", err)
	}
	return nil
}

func listItems(ctx context.Context, q querier, planID uuid.UUID) ([]storage.PlanItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM meal_plan_items
		WHERE plan_id = $1
		ORDER BY
			CASE slot
				WHEN 'breakfast' THEN 1
				WHEN 'lunch' THEN 2
				WHEN 'dinner' THEN 3
				WHEN 'snack' THEN 4
				ELSE 5
			END,
			position
	`

	rows, err := q.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan items: %w", err)
	}
	defer rows.Close()

	items := []storage.PlanItem{}
	for rows.Next() {
		var item storage.PlanItem
		err := rows.Scan(
			&item.ID,
			&item.PlanID,
			&item.Slot,
			&item.Position,
			&item.MealID,
			&item.Name,
			&item.Calories,
			&item.Payload,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan item: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating meal plan items: %w", rows.Err())
	}

	return items, nil
}
