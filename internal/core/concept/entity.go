package concept

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind は勤務区分の種類を表します。特定の区分に固有のルールはこの値で判定します。
type Kind string

const (
	KindRegular Kind = "regular"
	KindExtra   Kind = "extra"
	KindDayOff  Kind = "day_off"
	KindOther   Kind = "other"
)

// 区分名はマスタデータ上の表示名です。
const (
	NameRegular = "Turno Normal"
	NameExtra   = "Turno Extra"
	NameDayOff  = "Día Libre"
)

// WorkConcept は勤務区分 (通常勤務・追加勤務・休日など) のマスタです。
type WorkConcept struct {
	ID              int
	Name            string
	MinHours        *int
	MaxHours        *int
	CountsAsWorkday bool
}

// Kind は区分名から種類を判定します。
func (c *WorkConcept) Kind() Kind {
	if c == nil {
		return KindOther
	}
	return KindFromName(c.Name)
}

// IsDayOff は休日区分かどうかを返します。
func (c *WorkConcept) IsDayOff() bool {
	return c.Kind() == KindDayOff
}

// HourRange は最小・最大時間が両方定義されている場合にその範囲を返します。
func (c *WorkConcept) HourRange() (minHours, maxHours int, ok bool) {
	if c == nil || c.MinHours == nil || c.MaxHours == nil {
		return 0, 0, false
	}
	return *c.MinHours, *c.MaxHours, true
}

var kindsByName = map[string]Kind{
	foldName(NameRegular): KindRegular,
	foldName(NameExtra):   KindExtra,
	foldName(NameDayOff):  KindDayOff,
}

// KindFromName は大文字小文字とアクセントを無視して区分名を照合します。
func KindFromName(name string) Kind {
	if kind, ok := kindsByName[foldName(name)]; ok {
		return kind
	}
	return KindOther
}

func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
