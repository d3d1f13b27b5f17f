package repository

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// nextPackageCode computes the successor of the last issued package code.
// Codes run "001".."999", zero-padded.
func nextPackageCode(last string) (string, error) {
	if last == "" {
		return "001", nil
	}
	n, err := strconv.Atoi(last)
	if err != nil {
		return "", fmt.Errorf("malformed package code %q: %w", last, err)
	}
	if n >= 999 {
		return "", ErrCodesExhausted
	}
	return fmt.Sprintf("%03d", n+1), nil
}

// composePermanentCode builds the permanent contract code
// N/<phase><corridor>/<stretch><package>/<state>.
func composePermanentCode(phaseCode, corridorCode, stretchCode, packageCode, stateCode string) string {
	return fmt.Sprintf("N/%s%s/%s%s/%s", phaseCode, corridorCode, stretchCode, packageCode, stateCode)
}

// allocatePackageCode reads the latest allocation for the stretch and
// inserts the next one. Must run inside the promotion transaction: the
// primary key on (stretch_code, package_code) makes the losing side of a
// concurrent allocation fail with a duplicate-key error.
func allocatePackageCode(tx *gorm.DB, stretchCode string, userID int64) (string, error) {
	var last string
	err := tx.Raw(`
		SELECT package_code
		FROM package_master
		WHERE stretch_code = ?
		ORDER BY package_code DESC
		LIMIT 1
	`, stretchCode).Scan(&last).Error
	if err != nil {
		return "", err
	}

	code, err := nextPackageCode(last)
	if err != nil {
		return "", err
	}

	if err := tx.Exec(`
		INSERT INTO package_master (stretch_code, package_code, created_by)
		VALUES (?, ?, ?)
	`, stretchCode, code, userID).Error; err != nil {
		return "", err
	}
	return code, nil
}
