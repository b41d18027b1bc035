package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	loadSql "github.com/siherrmann/chipnews/sql"
)

// TripletsDBHandlerFunctions defines the interface for Triplets database operations.
type TripletsDBHandlerFunctions interface {
	InsertTriplet(triplet *model.Triplet) error
	SelectTripletsByChipmakers(chipmakers []string) ([]*model.Triplet, error)
	SelectTripletsByEntity(entity string) ([]*model.Triplet, error)
	DeleteTripletsByChipmaker(chipmaker string) (int, error)
}

// TripletsDBHandler handles triplet-related database operations
type TripletsDBHandler struct {
	db *helper.Database
}

// NewTripletsDBHandler creates a new triplets database handler.
// It initializes the database connection and loads triplet-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewTripletsDBHandler(db *helper.Database, force bool) (*TripletsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	tripletsDbHandler := &TripletsDBHandler{
		db: db,
	}

	err := loadSql.LoadTripletsSql(tripletsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load triplets sql", err)
	}

	err = tripletsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TripletsDBHandler")

	return tripletsDbHandler, nil
}

// CreateTable creates the 'triplets' table in the database.
// If the table already exists, it does not create it again.
func (h *TripletsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_triplets();`)
	if err != nil {
		log.Panicf("error initializing triplets table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table triplets")

	return nil
}

// InsertTriplet inserts a triplet. Inserting the same chipmaker and edge key
// again updates the detail and keeps the existing row.
func (h *TripletsDBHandler) InsertTriplet(triplet *model.Triplet) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_triplet($1, $2, $3, $4, $5, $6)`,
		triplet.Chipmaker,
		triplet.Subject,
		triplet.Object,
		triplet.Verb,
		triplet.Detail,
		triplet.Date,
	)

	err := scanTriplet(row, triplet)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectTripletsByChipmakers retrieves the triplets of the given chipmakers.
// An empty list selects all triplets.
func (h *TripletsDBHandler) SelectTripletsByChipmakers(chipmakers []string) ([]*model.Triplet, error) {
	return h.selectTriplets(`SELECT * FROM select_triplets_by_chipmakers($1)`, pq.Array(chipmakers))
}

// SelectTripletsByEntity retrieves the triplets with the entity as subject or object
func (h *TripletsDBHandler) SelectTripletsByEntity(entity string) ([]*model.Triplet, error) {
	return h.selectTriplets(`SELECT * FROM select_triplets_by_entity($1)`, entity)
}

// DeleteTripletsByChipmaker removes all triplets of a chipmaker and returns how many were deleted
func (h *TripletsDBHandler) DeleteTripletsByChipmaker(chipmaker string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(`SELECT delete_triplets_by_chipmaker($1)`, chipmaker).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

func (h *TripletsDBHandler) selectTriplets(query string, args ...any) ([]*model.Triplet, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	triplets := []*model.Triplet{}
	for rows.Next() {
		triplet := &model.Triplet{}
		err := scanTriplet(rows, triplet)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		triplets = append(triplets, triplet)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return triplets, nil
}

func scanTriplet(row rowScanner, triplet *model.Triplet) error {
	return row.Scan(
		&triplet.ID,
		&triplet.Chipmaker,
		&triplet.Subject,
		&triplet.Object,
		&triplet.Verb,
		&triplet.Detail,
		&triplet.Date,
		&triplet.CreatedAt,
	)
}
