package domain

// Door a check-in station. Name entries reference it by the Door string only.
type Door struct {
	ID   string `db:"door_id" json:"_id"`
	Door string `db:"door" json:"door"`
}
