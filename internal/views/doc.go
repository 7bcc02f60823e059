// Package views fans the full contest out into role projections.
//
// A Router listens to the full contest from the start of its history and
// feeds independent contests for the trusted, balloon, public and per-team
// roles. Every accepted event passes, in order:
//
//  1. problems are held back until the contest has started
//  2. awards never leave the full contest
//  3. objects of hidden teams or groups are dropped, including anything
//     that reaches a hidden team through submission, judgement or run links
//  4. a per-kind rule picks the receiving projections
//
// Judgements of submissions at or after the freeze boundary are withheld
// from the trusted, public and team projections and released when the
// contest is finalized. The balloon projection still receives a withheld
// solve while the team has fewer than three balloons.
//
// State changes also raise one-time transition notices on their leading
// edge. The start edge pushes the problem set into every projection.
package views
