package models

import "time"

// ImportRun is a single importer execution stored in MongoDB.
type ImportRun struct {
	ID         string    `json:"id"          bson:"_id"`
	StartedAt  time.Time `json:"started_at"  bson:"started_at"`
	FinishedAt time.Time `json:"finished_at" bson:"finished_at"`
	Requested  int       `json:"requested"   bson:"requested"`
	Seeded     int       `json:"seeded"      bson:"seeded"`
	Skipped    int       `json:"skipped"     bson:"skipped"`
	Failed     []int64   `json:"failed"      bson:"failed"`
	Reset      bool      `json:"reset"       bson:"reset"`
}
