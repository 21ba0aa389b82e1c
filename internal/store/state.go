package store

import (
	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/filter"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

// State is the cached view of one session. Visible always equals
// filter.Apply(All, Criteria).
type State struct {
	All        []models.Transaction
	Visible    []models.Transaction
	Categories []models.Category
	Criteria   filter.Criteria
	Loading    bool
	LastError  *apperrors.Error
}

func InitialState() State {
	return State{
		All:        []models.Transaction{},
		Visible:    []models.Transaction{},
		Categories: models.DefaultCategories(),
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.All = cloneTransactions(s.All)
	out.Visible = cloneTransactions(s.Visible)
	out.Categories = cloneCategories(s.Categories)
	out.Criteria = s.Criteria.Clone()
	return out
}

// Mutation is one state transition. The set of variants is closed.
type Mutation interface {
	apply(State) State
}

// Reduce folds m over s. It never modifies s.
func Reduce(s State, m Mutation) State {
	return m.apply(s)
}

type LoadStarted struct{}

type Loaded struct {
	Transactions []models.Transaction
}

type LoadFailed struct {
	Err *apperrors.Error
}

type Added struct {
	Transaction models.Transaction
}

type Updated struct {
	Transaction models.Transaction
}

type Removed struct {
	ID int
}

type FilterSet struct {
	Criteria filter.Criteria
}

type FilterCleared struct{}

type CategoriesSet struct {
	Categories []models.Category
}

type CategoryAdded struct {
	Category models.Category
}

type SessionEnded struct{}

func (LoadStarted) apply(s State) State {
	s.Loading = true
	s.LastError = nil
	return s
}

func (m Loaded) apply(s State) State {
	s.Loading = false
	s.LastError = nil
	return withAll(s, cloneTransactions(m.Transactions))
}

func (m LoadFailed) apply(s State) State {
	s.Loading = false
	s.LastError = m.Err
	return s
}

func (m Added) apply(s State) State {
	all := make([]models.Transaction, 0, len(s.All)+1)
	all = append(all, s.All...)
	all = append(all, m.Transaction)
	return withAll(s, all)
}

func (m Updated) apply(s State) State {
	all := cloneTransactions(s.All)
	for i := range all {
		if all[i].ID == m.Transaction.ID {
			all[i] = m.Transaction
		}
	}
	return withAll(s, all)
}

func (m Removed) apply(s State) State {
	all := make([]models.Transaction, 0, len(s.All))
	for _, t := range s.All {
		if t.ID != m.ID {
			all = append(all, t)
		}
	}
	return withAll(s, all)
}

func (m FilterSet) apply(s State) State {
	s.Criteria = m.Criteria.Clone()
	s.Visible = filter.Apply(s.All, s.Criteria)
	return s
}

func (FilterCleared) apply(s State) State {
	s.Criteria = filter.Criteria{}
	s.Visible = filter.Apply(s.All, s.Criteria)
	return s
}

func (m CategoriesSet) apply(s State) State {
	s.Categories = cloneCategories(m.Categories)
	return s
}

func (m CategoryAdded) apply(s State) State {
	cats := make([]models.Category, 0, len(s.Categories)+1)
	cats = append(cats, s.Categories...)
	s.Categories = append(cats, m.Category)
	return s
}

func (SessionEnded) apply(State) State {
	return InitialState()
}

func withAll(s State, all []models.Transaction) State {
	s.All = all
	s.Visible = filter.Apply(all, s.Criteria)
	return s
}

func cloneTransactions(in []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(in))
	copy(out, in)
	return out
}

func cloneCategories(in []models.Category) []models.Category {
	out := make([]models.Category, len(in))
	copy(out, in)
	return out
}
