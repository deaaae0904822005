package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/stecc88/roommatch/internal/db"
)

// Sub-score weights and caps.
const (
	cityBonus      = 20
	roleBonus      = 15
	genderBonus    = 10
	appModeBonus   = 15
	goalWeight     = 5
	goalCap        = 10
	interestWeight = 2
	interestCap    = 10
	languageWeight = 1.5
	languageCap    = 5
	ageTolerance   = 10 // years of difference without penalty
	agePenaltyCap  = 10
)

// compatibleRoles lists the role pairs that earn the role bonus. Every pair
// of known roles is in it; an empty or unknown role earns nothing.
var compatibleRoles = map[[2]db.Role]bool{
	{db.RoleOwner, db.RoleSeeker}:  true,
	{db.RoleSeeker, db.RoleOwner}:  true,
	{db.RoleBoth, db.RoleOwner}:    true,
	{db.RoleOwner, db.RoleBoth}:    true,
	{db.RoleBoth, db.RoleSeeker}:   true,
	{db.RoleSeeker, db.RoleBoth}:   true,
	{db.RoleBoth, db.RoleBoth}:     true,
	{db.RoleOwner, db.RoleOwner}:   true,
	{db.RoleSeeker, db.RoleSeeker}: true,
}

// Score rates how well c fits me, as an integer in [0, 100].
//
// It is not symmetric: the gender bonus follows me's share preference and
// c's gender. Missing attributes contribute nothing. now fixes the year used
// for ages.
func Score(me, c *db.User, now time.Time) int {
	var s float64

	if sameCity(me.CurrentCity, c.TargetCity) || sameCity(me.TargetCity, c.CurrentCity) {
		s += cityBonus
	}
	if compatibleRoles[[2]db.Role{me.Role, c.Role}] {
		s += roleBonus
	}
	if acceptsGender(me.SharePreference, c.Gender) {
		s += genderBonus
	}
	if overlap(me.AppModes, c.AppModes) > 0 {
		s += appModeBonus
	}

	s += math.Min(goalCap, float64(overlap(me.CohabitationGoals, c.CohabitationGoals))*goalWeight)
	s += math.Min(interestCap, float64(overlap(me.Interests, c.Interests))*interestWeight)
	s += math.Min(languageCap, float64(overlap(me.Languages, c.Languages))*languageWeight)
	s -= agePenalty(me.BirthDate, c.BirthDate, now)

	return int(math.Max(0, math.Min(100, math.Round(s))))
}

// cityPrefix is the part before the first '-', trimmed and lower-cased:
// "Madrid - Centro" -> "madrid".
func cityPrefix(city string) string {
	head, _, _ := strings.Cut(city, "-")
	return strings.ToLower(strings.TrimSpace(head))
}

func sameCity(a, b string) bool {
	pa, pb := cityPrefix(a), cityPrefix(b)
	return pa != "" && pa == pb
}

func acceptsGender(pref db.SharePreference, g db.Gender) bool {
	switch {
	case pref == db.ShareWithAnyone:
		return true
	case g == db.GenderPreferNotSay:
		return true
	case pref == db.ShareWithMenOnly:
		return g == db.GenderMale
	case pref == db.ShareWithWomenOnly:
		return g == db.GenderFemale
	default:
		return false
	}
}

// overlap counts the distinct values present in both a and b.
func overlap[T comparable](a, b []T) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[T]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	n := 0
	seen := make(map[T]struct{}, len(a))
	for _, v := range a {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := inB[v]; ok {
			n++
		}
	}
	return n
}

// agePenalty is 0 up to ageTolerance years apart, then one point per extra
// year, capped. Ages are whole calendar years at now.
func agePenalty(a, b *time.Time, now time.Time) float64 {
	if a == nil || b == nil {
		return 0
	}
	ageA := now.Year() - a.Year()
	ageB := now.Year() - b.Year()
	diff := ageA - ageB
	if diff < 0 {
		diff = -diff
	}
	return float64(min(agePenaltyCap, max(0, diff-ageTolerance)))
}
