package gorm

import (
	"context"
	"fmt"

	"github.com/ichigozero/taskguard/tasksvc"
	stdgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(ctx context.Context, task *tasksvc.Task) error {
	result := t.db.WithContext(ctx).Create(task)
	return translate(result.Error)
}

func (t *taskRepository) Find(ctx context.Context, id uint64) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := t.db.WithContext(ctx).First(&task, id)

	return task, notFound(result.Error, tasksvc.ErrTaskNotFound)
}

func (t *taskRepository) FindBy(ctx context.Context, field tasksvc.Field, value interface{}) (tasksvc.Task, error) {
	switch field {
	case tasksvc.ByTitle, tasksvc.ByOwner:
	default:
		return tasksvc.Task{}, fmt.Errorf("unknown task field %q", field)
	}

	var task tasksvc.Task
	result := t.db.WithContext(ctx).
		Where(map[string]interface{}{string(field): value}).
		First(&task)

	return task, notFound(result.Error, tasksvc.ErrTaskNotFound)
}

func (t *taskRepository) FindAll(ctx context.Context) ([]tasksvc.Task, error) {
	var tasks []tasksvc.Task
	result := t.db.WithContext(ctx).Order("id").Find(&tasks)

	return tasks, result.Error
}

func (t *taskRepository) Update(ctx context.Context, task tasksvc.Task) error {
	result := t.db.WithContext(ctx).Model(&tasksvc.Task{ID: task.ID}).Updates(
		map[string]interface{}{
			"title":       task.Title,
			"title_key":   task.TitleKey,
			"description": task.Description,
			"status":      task.Status,
			"owner_id":    task.OwnerID,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}

func (t *taskRepository) Delete(ctx context.Context, id uint64) error {
	result := t.db.WithContext(ctx).Delete(&tasksvc.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}
