// services/creator.go
package services

import (
	"fmt"
	"slices"

	"dream-league-engine/models"
)

// NewCreator registers an unverified creator. Fees are in basis points and
// capped at 10%.
func NewCreator(id, authorityID, name string, feeBasisPoints uint16, now int64) (*models.Creator, error) {
	if feeBasisPoints > models.MaxCreatorFeeBasisPoints {
		return nil, fmt.Errorf("%d bps: %w", feeBasisPoints, ErrInvalidFeeBasisPoints)
	}
	return &models.Creator{
		ID:             id,
		AuthorityID:    authorityID,
		Name:           name,
		FeeBasisPoints: feeBasisPoints,
		CreatedAt:      now,
	}, nil
}

// VerifyCreator marks c as allowed to mint exclusive athletes.
func VerifyCreator(c *models.Creator) {
	c.Verified = true
}

// RecordExclusiveAthlete counts a minted athlete against c and remembers the
// collection it belongs to.
func RecordExclusiveAthlete(c *models.Creator, collectionID *string) error {
	if !c.Verified {
		return ErrCreatorNotVerified
	}
	c.TotalAthletesCreated = saturatingAddU32(c.TotalAthletesCreated, 1)
	if collectionID != nil && *collectionID != "" && !slices.Contains(c.CollectionsCreated, *collectionID) {
		c.CollectionsCreated = append(c.CollectionsCreated, *collectionID)
	}
	return nil
}
