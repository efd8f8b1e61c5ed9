package database

import (
	"context"
	"strings"
	"time"

	"djdeploy/internal/crash"

	"gorm.io/gorm"
)

type CrashRepo struct {
	db *gorm.DB
}

func NewCrashRepo() *CrashRepo {
	return &CrashRepo{db: DB}
}

// NewCrashRepoWith uses db instead of the global handle.
func NewCrashRepoWith(db *gorm.DB) *CrashRepo {
	return &CrashRepo{db: db}
}

func (r *CrashRepo) Create(ctx context.Context, record *CrashRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List returns the newest records first. limit <= 0 means all.
func (r *CrashRepo) List(limit int) ([]CrashRecord, error) {
	var records []CrashRecord
	q := r.db.Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

func (r *CrashRepo) FindByReportID(reportID string) (*CrashRecord, error) {
	var record CrashRecord
	err := r.db.Where(&CrashRecord{ReportID: reportID}).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByPrefix returns at most limit records whose report ID starts with
// prefix. LIKE wildcards in prefix match literally.
func (r *CrashRepo) FindByPrefix(prefix string, limit int) ([]CrashRecord, error) {
	var records []CrashRecord
	err := r.db.Where(`report_id LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").Limit(limit).Find(&records).Error
	return records, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *CrashRepo) MarkSubmitted(reportID string) error {
	res := r.db.Model(&CrashRecord{}).Where("report_id = ?", reportID).Update("submitted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CrashRepo) Delete(reportID string) error {
	res := r.db.Where("report_id = ?", reportID).Delete(&CrashRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CrashRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&CrashRecord{}).Count(&count).Error
	return count, err
}

func (r *CrashRepo) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&CrashRecord{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// Record implements crash.Recorder.
func (r *CrashRepo) Record(ctx context.Context, e crash.Entry) error {
	return r.Create(ctx, &CrashRecord{
		CreatedAt:  e.CreatedAt,
		ReportID:   e.ReportID,
		Command:    e.Command,
		Title:      e.Title,
		ReportPath: e.ReportPath,
		Submitted:  e.Submitted,
	})
}
