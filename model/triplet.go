package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Relation is the labelled part of a triplet.
type Relation struct {
	Verb   string `json:"verb"`
	Detail string `json:"detail"`
}

// RawTriplet is a triplet as it appears in the graph dataset.
type RawTriplet struct {
	Subject  string   `json:"subject"`
	Relation Relation `json:"relation"`
	Object   string   `json:"object"`
}

// TripletRecord groups the triplets extracted for one chipmaker and date.
type TripletRecord struct {
	Date     string       `json:"date"`
	Triplets []RawTriplet `json:"triplets"`
}

// GraphDataset maps a chipmaker to its dated triplet records.
type GraphDataset map[string][]TripletRecord

// Triplet is a directed, labelled relation edge tagged by chipmaker and date.
type Triplet struct {
	ID        uuid.UUID `json:"id"`
	Chipmaker string    `json:"chipmaker"`
	Subject   string    `json:"subject"`
	Object    string    `json:"object"`
	Verb      string    `json:"verb"`
	Detail    string    `json:"detail"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// EdgeKey identifies a triplet among parallel edges between the same nodes.
type EdgeKey struct {
	Subject string
	Object  string
	Verb    string
	Date    string
}

// Key returns the edge key of the triplet.
func (t *Triplet) Key() EdgeKey {
	return EdgeKey{Subject: t.Subject, Object: t.Object, Verb: t.Verb, Date: t.Date}
}

// Format renders the triplet as "verb (detail, date)".
func (t *Triplet) Format() string {
	return fmt.Sprintf("%s (%s, %s)", t.Verb, t.Detail, t.Date)
}

// Arrow renders the triplet as "(subject) --[verb]--> (object)".
func (t *Triplet) Arrow() string {
	return fmt.Sprintf("(%s) --[%s]--> (%s)", t.Subject, t.Verb, t.Object)
}

// EntityNode is an entity reached by a graph traversal.
type EntityNode struct {
	Name     string   `json:"name"`
	Distance int      `json:"distance"`
	Path     []string `json:"path"`
}
