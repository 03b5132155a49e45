// Package model defines the typed entities of the attendance dataset.
//
// The dataset is six fixed tables: Department, Class, Student, Servant,
// Activity and Attendance. A Snapshot holds all of them as loaded from the
// store at one point in time. Engines take a Snapshot (or views derived from
// it) as an explicit input and never modify it.
//
// Dates are calendar dates held as UTC midnight. Month labels follow the
// "2006-January" form; ordering always uses Month.Start.
package model
