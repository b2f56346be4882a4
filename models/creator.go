// models/creator.go
package models

import "gorm.io/datatypes"

// MaxCreatorFeeBasisPoints caps a creator's royalty at 10%.
const MaxCreatorFeeBasisPoints = 1000

// Creator may mint exclusive athletes once an admin has verified it.
type Creator struct {
	ID                   string                      `json:"id" gorm:"primaryKey"`
	AuthorityID          string                      `json:"authority_id" gorm:"uniqueIndex;not null"`
	Name                 string                      `json:"name" gorm:"not null"`
	Verified             bool                        `json:"verified" gorm:"default:false"`
	FeeBasisPoints       uint16                      `json:"fee_basis_points"`
	CollectionsCreated   datatypes.JSONSlice[string] `json:"collections_created"`
	TotalAthletesCreated uint32                      `json:"total_athletes_created"`
	CreatedAt            int64                       `json:"created_at"`
}
