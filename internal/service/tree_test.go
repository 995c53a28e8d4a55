package service_test

import (
	"context"
	"testing"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
	"collaborative-workspace/internal/repository/mocks"
	"collaborative-workspace/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInferLanguage(t *testing.T) {
	tests := []struct {
		name, file, requested, want string
	}{
		{"extension wins", "main.py", "javascript", "python"},
		{"upper case extension", "INDEX.HTM", "", "html"},
		{"unknown extension keeps request", "Makefile", "Shell", "shell"},
		{"default", "notes", "", "javascript"},
		{"yaml alias", "ci.yml", "", "yaml"},
		{"shell", "run.sh", "", "bash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.InferLanguage(tt.file, tt.requested))
		})
	}
}

func TestTreeService_CreateFile(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingName", func(t *testing.T) {
		svc := service.NewTreeService(mocks.NewFolderRepository(t), mocks.NewFileRepository(t))
		_, _, err := svc.CreateFile(ctx, "u1", "r1", "", "  ", "go")
		assert.ErrorIs(t, err, service.ErrMissingFields)
	})

	t.Run("FolderInOtherRoom", func(t *testing.T) {
		folders := mocks.NewFolderRepository(t)
		files := mocks.NewFileRepository(t)
		folders.On("FindInRoom", ctx, "fo1", "r1").Return(nil, repository.ErrFolderNotFound).Once()

		svc := service.NewTreeService(folders, files)
		_, _, err := svc.CreateFile(ctx, "u1", "r1", "fo1", "a.go", "")
		assert.ErrorIs(t, err, service.ErrFolderNotFound)
		assert.Equal(t, "Folder not found", service.PublicMessage(err, ""))
	})

	t.Run("DuplicateSibling", func(t *testing.T) {
		folders := mocks.NewFolderRepository(t)
		files := mocks.NewFileRepository(t)
		files.On("Create", ctx, mock.AnythingOfType("*domain.File")).Return(repository.ErrDuplicateEntry).Once()

		svc := service.NewTreeService(folders, files)
		_, _, err := svc.CreateFile(ctx, "u1", "r1", "", "main.go", "")
		assert.ErrorIs(t, err, service.ErrDuplicateName)
		files.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		folders := mocks.NewFolderRepository(t)
		files := mocks.NewFileRepository(t)
		folders.On("FindInRoom", ctx, "fo1", "r1").Return(&domain.Folder{ID: "fo1", RoomID: "r1"}, nil).Once()
		files.On("Create", ctx, mock.MatchedBy(func(f *domain.File) bool {
			return f.Name == "main.rs" && f.Language == "rust" && f.FolderID == "fo1" && f.CreatedBy == "u1" && f.ID != ""
		})).Return(nil).Once()
		files.On("ListByRoom", ctx, "r1").Return([]domain.File{{ID: "x"}}, nil).Once()

		svc := service.NewTreeService(folders, files)
		file, all, err := svc.CreateFile(ctx, "u1", "r1", "fo1", " main.rs ", "JavaScript")
		require.NoError(t, err)
		assert.Equal(t, "rust", file.Language)
		assert.Len(t, all, 1)
	})
}

func TestTreeService_RenameFolder(t *testing.T) {
	ctx := context.Background()
	folders := mocks.NewFolderRepository(t)
	files := mocks.NewFileRepository(t)
	svc := service.NewTreeService(folders, files)

	folders.On("Rename", ctx, "missing", "r1", "x").Return(nil, repository.ErrFolderNotFound).Once()
	_, _, err := svc.RenameFolder(ctx, "r1", "missing", "x")
	assert.ErrorIs(t, err, service.ErrFolderNotFound)

	folders.On("Rename", ctx, "fo1", "r1", "lib").Return(nil, repository.ErrDuplicateEntry).Once()
	_, _, err = svc.RenameFolder(ctx, "r1", "fo1", "lib")
	assert.ErrorIs(t, err, service.ErrDuplicateName)

	folders.On("Rename", ctx, "fo1", "r1", "pkg").Return(&domain.Folder{ID: "fo1", Name: "pkg"}, nil).Once()
	folders.On("ListByRoom", ctx, "r1").Return([]domain.Folder{{ID: "fo1", Name: "pkg"}}, nil).Once()
	folder, _, err := svc.RenameFolder(ctx, "r1", "fo1", "pkg")
	require.NoError(t, err)
	assert.Equal(t, "pkg", folder.Name)
}

func TestTreeService_DeleteFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("AlreadyDeleted", func(t *testing.T) {
		folders := mocks.NewFolderRepository(t)
		folders.On("FindInRoom", ctx, "fo1", "r1").Return(nil, repository.ErrFolderNotFound).Once()

		svc := service.NewTreeService(folders, mocks.NewFileRepository(t))
		_, err := svc.DeleteFolder(ctx, "r1", "fo1")
		assert.Equal(t, "Folder not found or already deleted", service.PublicMessage(err, ""))
	})

	t.Run("Subtree", func(t *testing.T) {
		folders := mocks.NewFolderRepository(t)
		files := mocks.NewFileRepository(t)
		folders.On("FindInRoom", ctx, "F", "r1").Return(&domain.Folder{ID: "F", RoomID: "r1"}, nil).Once()
		folders.On("DeleteTree", ctx, "F", "r1").Return([]string{"sub2", "sub1", "F"}, []string{"f1", "f2"}, nil).Once()
		folders.On("ListByRoom", ctx, "r1").Return([]domain.Folder{}, nil).Once()
		files.On("ListByRoom", ctx, "r1").Return([]domain.File{}, nil).Once()

		svc := service.NewTreeService(folders, files)
		res, err := svc.DeleteFolder(ctx, "r1", "F")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub2", "sub1", "F"}, res.FolderIDs)
		assert.Equal(t, []string{"f1", "f2"}, res.FileIDs)
		assert.Empty(t, res.Folders)
	})
}

func TestTreeService_DeleteFile(t *testing.T) {
	ctx := context.Background()
	files := mocks.NewFileRepository(t)
	svc := service.NewTreeService(mocks.NewFolderRepository(t), files)

	files.On("Delete", ctx, "f1", "r1").Return(repository.ErrFileNotFound).Once()
	_, err := svc.DeleteFile(ctx, "r1", "f1")
	assert.Equal(t, "File not found or already deleted", service.PublicMessage(err, ""))

	files.On("Delete", ctx, "f2", "r1").Return(nil).Once()
	files.On("ListByRoom", ctx, "r1").Return([]domain.File{}, nil).Once()
	remaining, err := svc.DeleteFile(ctx, "r1", "f2")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
