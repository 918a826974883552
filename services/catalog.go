package services

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/model"
)

//go:embed data/lessons.json
var lessonData embed.FS

// CatalogService owns the static lesson catalog. Lessons are loaded once at
// startup and never change afterwards.
type CatalogService struct {
	context.DefaultService

	lessons []model.Lesson
	byID    map[string]*model.Lesson
	byOrder map[int]*model.Lesson
}

const CATALOG_SVC = "catalog_svc"

func (svc CatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *CatalogService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *CatalogService) Start() error {
	raw, err := lessonData.ReadFile("data/lessons.json")
	if err != nil {
		return fmt.Errorf("failed to read lesson data: %w", err)
	}

	if err := json.Unmarshal(raw, &svc.lessons); err != nil {
		return fmt.Errorf("failed to parse lesson data: %w", err)
	}

	sort.Slice(svc.lessons, func(i, j int) bool {
		return svc.lessons[i].OrderNumber < svc.lessons[j].OrderNumber
	})

	svc.byID = make(map[string]*model.Lesson, len(svc.lessons))
	svc.byOrder = make(map[int]*model.Lesson, len(svc.lessons))
	for i := range svc.lessons {
		lesson := &svc.lessons[i]
		svc.byID[lesson.ID] = lesson
		svc.byOrder[lesson.OrderNumber] = lesson
	}

	if err := svc.validateCatalog(); err != nil {
		return err
	}

	log.Printf("Lesson catalog loaded: %d lessons", len(svc.lessons))
	return nil
}

// validateCatalog enforces the catalog invariants: order numbers dense over
// 1..N, exactly one final lesson and it is the last one.
func (svc *CatalogService) validateCatalog() error {
	finals := 0
	for i := range svc.lessons {
		lesson := &svc.lessons[i]
		if lesson.OrderNumber != i+1 {
			return fmt.Errorf("lesson order numbers are not dense: got %d at position %d", lesson.OrderNumber, i+1)
		}
		if lesson.IsFinal {
			finals++
			if lesson.OrderNumber != len(svc.lessons) {
				return fmt.Errorf("final lesson %s is not last in the sequence", lesson.ID)
			}
		}
	}
	if finals != 1 {
		return fmt.Errorf("catalog must contain exactly one final lesson, found %d", finals)
	}
	return nil
}

// List returns lessons ordered by number, ascending.
func (svc *CatalogService) List() []model.Lesson {
	return svc.lessons
}

func (svc *CatalogService) ByID(lessonID string) (*model.Lesson, error) {
	lesson, ok := svc.byID[lessonID]
	if !ok {
		return nil, fmt.Errorf("lesson %s not found", lessonID)
	}
	return lesson, nil
}

func (svc *CatalogService) ByOrder(n int) (*model.Lesson, error) {
	lesson, ok := svc.byOrder[n]
	if !ok {
		return nil, fmt.Errorf("lesson number %d not found", n)
	}
	return lesson, nil
}

// Next returns the lesson after the given one, or nil at the end of the
// sequence.
func (svc *CatalogService) Next(lessonID string) (*model.Lesson, error) {
	lesson, err := svc.ByID(lessonID)
	if err != nil {
		return nil, err
	}
	return svc.byOrder[lesson.OrderNumber+1], nil
}

// Previous returns the lesson before the given one, or nil at the start.
func (svc *CatalogService) Previous(lessonID string) (*model.Lesson, error) {
	lesson, err := svc.ByID(lessonID)
	if err != nil {
		return nil, err
	}
	return svc.byOrder[lesson.OrderNumber-1], nil
}

// CheckAnswer compares a submission against the lesson's answer key,
// case-insensitively after trimming surrounding whitespace.
func (svc *CatalogService) CheckAnswer(lessonID, submission string) (bool, error) {
	lesson, err := svc.ByID(lessonID)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(
		strings.TrimSpace(lesson.Question.Answer),
		strings.TrimSpace(submission),
	), nil
}
