package models

import "time"

// PackageLoad records one numbered package of a trip. The loaded flag flips
// 0→1 exactly once; re-scans leave the row untouched.
type PackageLoad struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	TripID     int64      `gorm:"column:trip_id;not null;uniqueIndex:uq_package_loads_trip_pkg,priority:1"`
	PkgNo      int        `gorm:"column:pkg_no;not null;uniqueIndex:uq_package_loads_trip_pkg,priority:2"`
	Loaded     bool       `gorm:"column:loaded;not null;default:false"`
	LoadedBy   string     `gorm:"column:loaded_by;size:64"`
	LoadedTime *time.Time `gorm:"column:loaded_time"`
}

// TableName overrides the default GORM pluralization.
func (PackageLoad) TableName() string {
	return "package_loads"
}
