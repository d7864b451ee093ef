package Services

import "gorm.io/gorm"

func (r DateRange) apply(q *gorm.DB, column string) *gorm.DB {
	if r.From != nil {
		q = q.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where(column+" <= ?", *r.To)
	}
	return q
}

func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}
