package workout

import "time"

// Workout is the gym's daily routine for one date. One row per gym per day;
// writes upsert on (gym_id, workout_date).
type Workout struct {
	ID          string    `db:"id" json:"id"`
	GymID       string    `db:"gym_id" json:"gym_id"`
	WorkoutDate time.Time `db:"workout_date" json:"workout_date"`
	WorkoutText string    `db:"workout_text" json:"workout_text"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertRequest struct {
	GymID       string `json:"gym_id" binding:"required"`
	WorkoutDate string `json:"workout_date" binding:"required"`
	WorkoutText string `json:"workout_text" binding:"required"`
}

type UpdateRequest struct {
	ID          string `json:"id" binding:"required"`
	WorkoutText string `json:"workout_text" binding:"required"`
}
