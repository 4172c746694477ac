package ledger

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"atoiota/internal/models"
)

// Ledger is the append-only, persisted history of submission attempts. Rows
// are never deleted; a record mutates exactly once more after creation, to its
// terminal status.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Append persists a new record. Listing is most-recent-first, so appending is
// just a create.
func (l *Ledger) Append(rec *models.TransactionRecord) error {
	return l.db.Create(rec).Error
}

// Patch carries the fields a record update may change. Nil fields are left
// untouched.
type Patch struct {
	TxID    *string
	Hash    *string
	Status  *string
	Details *string
}

// Update merges a patch into the record with the given stable ref. An unknown
// ref is a no-op: the caller owns retry semantics, and confirmation watchers
// racing an id swap must not fail hard here.
func (l *Ledger) Update(ref string, patch Patch) error {
	fields := map[string]interface{}{}
	if patch.TxID != nil {
		fields["tx_id"] = *patch.TxID
	}
	if patch.Hash != nil {
		fields["hash"] = *patch.Hash
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Details != nil {
		fields["details"] = *patch.Details
	}
	if len(fields) == 0 {
		return nil
	}
	return l.db.Model(&models.TransactionRecord{}).Where("ref = ?", ref).Updates(fields).Error
}

// Get returns a record by its stable ref.
func (l *Ledger) Get(ref string) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	if err := l.db.Where("ref = ?", ref).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByTxID returns a record by its externally visible id, which is the
// placeholder before the write is accepted and the chain hash afterwards.
func (l *Ledger) FindByTxID(txID string) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	if err := l.db.Where("tx_id = ? OR hash = ?", txID, txID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records most-recent-first. limit <= 0 returns everything.
func (l *Ledger) List(limit int) ([]models.TransactionRecord, error) {
	q := l.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []models.TransactionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Export serializes the whole ledger as JSON, most-recent-first, with RFC-3339
// timestamps. The output round-trips through Import.
func (l *Ledger) Export() ([]byte, error) {
	recs, err := l.List(0)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(recs, "", "  ")
}

// Import appends exported records that are not already present, keyed by ref.
// Existing records are left alone: the ledger is append-only.
func (l *Ledger) Import(data []byte) (int, error) {
	var recs []models.TransactionRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return 0, err
	}

	imported := 0
	for i := range recs {
		rec := recs[i]
		if rec.Ref == "" {
			return imported, errors.New("record missing ref")
		}
		rec.ID = 0
		err := l.db.Where("ref = ?", rec.Ref).First(&models.TransactionRecord{}).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return imported, err
		}
		if err := l.db.Create(&rec).Error; err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
