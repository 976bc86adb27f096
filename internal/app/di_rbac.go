package app

import (
	"fmt"
	"sync"

	iamHTTP "github.com/bouncr/iam/internal/http"
	rbacHTTP "github.com/bouncr/iam/internal/rbac/http"
	rbacRepository "github.com/bouncr/iam/internal/rbac/repository"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
)

// rbacComponents holds the user directory and role based access control components.
type rbacComponents struct {
	userRepository        *rbacRepository.PostgreSQLUserRepository
	groupRepository       *rbacRepository.PostgreSQLGroupRepository
	applicationRepository *rbacRepository.PostgreSQLApplicationRepository
	roleRepository        *rbacRepository.PostgreSQLRoleRepository
	permissionRepository  *rbacRepository.PostgreSQLPermissionRepository
	assignmentRepository  *rbacRepository.PostgreSQLAssignmentRepository

	userUseCase          rbacUseCase.UserUseCase
	groupUseCase         rbacUseCase.GroupUseCase
	applicationUseCase   rbacUseCase.ApplicationUseCase
	roleUseCase          rbacUseCase.RoleUseCase
	permissionUseCase    rbacUseCase.PermissionUseCase
	assignmentUseCase    rbacUseCase.AssignmentUseCase
	authorizationUseCase rbacUseCase.AuthorizationUseCase
	bootstrapUseCase     rbacUseCase.BootstrapUseCase

	userRepositoryInit        sync.Once
	groupRepositoryInit       sync.Once
	applicationRepositoryInit sync.Once
	roleRepositoryInit        sync.Once
	permissionRepositoryInit  sync.Once
	assignmentRepositoryInit  sync.Once
	userUseCaseInit           sync.Once
	groupUseCaseInit          sync.Once
	applicationUseCaseInit    sync.Once
	roleUseCaseInit           sync.Once
	permissionUseCaseInit     sync.Once
	assignmentUseCaseInit     sync.Once
	authorizationUseCaseInit  sync.Once
	bootstrapUseCaseInit      sync.Once
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (*rbacRepository.PostgreSQLUserRepository, error) {
	c.userRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepository"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}
		c.userRepository = rbacRepository.NewPostgreSQLUserRepository(db)
	})
	if storedErr, exists := c.initErrors["userRepository"]; exists {
		return nil, storedErr
	}
	return c.userRepository, nil
}

// GroupRepository returns the group repository instance.
func (c *Container) GroupRepository() (*rbacRepository.PostgreSQLGroupRepository, error) {
	c.groupRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["groupRepository"] = fmt.Errorf("failed to get database for group repository: %w", err)
			return
		}
		c.groupRepository = rbacRepository.NewPostgreSQLGroupRepository(db)
	})
	if storedErr, exists := c.initErrors["groupRepository"]; exists {
		return nil, storedErr
	}
	return c.groupRepository, nil
}

// ApplicationRepository returns the application repository instance.
func (c *Container) ApplicationRepository() (*rbacRepository.PostgreSQLApplicationRepository, error) {
	c.applicationRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["applicationRepository"] = fmt.Errorf(
				"failed to get database for application repository: %w", err)
			return
		}
		c.applicationRepository = rbacRepository.NewPostgreSQLApplicationRepository(db)
	})
	if storedErr, exists := c.initErrors["applicationRepository"]; exists {
		return nil, storedErr
	}
	return c.applicationRepository, nil
}

// RoleRepository returns the role repository instance.
func (c *Container) RoleRepository() (*rbacRepository.PostgreSQLRoleRepository, error) {
	c.roleRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["roleRepository"] = fmt.Errorf("failed to get database for role repository: %w", err)
			return
		}
		c.roleRepository = rbacRepository.NewPostgreSQLRoleRepository(db)
	})
	if storedErr, exists := c.initErrors["roleRepository"]; exists {
		return nil, storedErr
	}
	return c.roleRepository, nil
}

// PermissionRepository returns the permission repository instance.
func (c *Container) PermissionRepository() (*rbacRepository.PostgreSQLPermissionRepository, error) {
	c.permissionRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["permissionRepository"] = fmt.Errorf(
				"failed to get database for permission repository: %w", err)
			return
		}
		c.permissionRepository = rbacRepository.NewPostgreSQLPermissionRepository(db)
	})
	if storedErr, exists := c.initErrors["permissionRepository"]; exists {
		return nil, storedErr
	}
	return c.permissionRepository, nil
}

// AssignmentRepository returns the assignment repository instance.
func (c *Container) AssignmentRepository() (*rbacRepository.PostgreSQLAssignmentRepository, error) {
	c.assignmentRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["assignmentRepository"] = fmt.Errorf(
				"failed to get database for assignment repository: %w", err)
			return
		}
		c.assignmentRepository = rbacRepository.NewPostgreSQLAssignmentRepository(db)
	})
	if storedErr, exists := c.initErrors["assignmentRepository"]; exists {
		return nil, storedErr
	}
	return c.assignmentRepository, nil
}

// UserUseCase returns the user use case instance.
func (c *Container) UserUseCase() (rbacUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// GroupUseCase returns the group use case instance.
func (c *Container) GroupUseCase() (rbacUseCase.GroupUseCase, error) {
	var err error
	c.groupUseCaseInit.Do(func() {
		c.groupUseCase, err = c.initGroupUseCase()
		if err != nil {
			c.initErrors["groupUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["groupUseCase"]; exists {
		return nil, storedErr
	}
	return c.groupUseCase, nil
}

// ApplicationUseCase returns the application use case instance.
func (c *Container) ApplicationUseCase() (rbacUseCase.ApplicationUseCase, error) {
	c.applicationUseCaseInit.Do(func() {
		applicationRepository, err := c.ApplicationRepository()
		if err != nil {
			c.initErrors["applicationUseCase"] = fmt.Errorf(
				"failed to get application repository for application use case: %w", err)
			return
		}
		c.applicationUseCase = rbacUseCase.NewApplicationUseCase(applicationRepository)
	})
	if storedErr, exists := c.initErrors["applicationUseCase"]; exists {
		return nil, storedErr
	}
	return c.applicationUseCase, nil
}

// RoleUseCase returns the role use case instance.
func (c *Container) RoleUseCase() (rbacUseCase.RoleUseCase, error) {
	var err error
	c.roleUseCaseInit.Do(func() {
		c.roleUseCase, err = c.initRoleUseCase()
		if err != nil {
			c.initErrors["roleUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUseCase, nil
}

// PermissionUseCase returns the permission use case instance.
func (c *Container) PermissionUseCase() (rbacUseCase.PermissionUseCase, error) {
	c.permissionUseCaseInit.Do(func() {
		permissionRepository, err := c.PermissionRepository()
		if err != nil {
			c.initErrors["permissionUseCase"] = fmt.Errorf(
				"failed to get permission repository for permission use case: %w", err)
			return
		}
		c.permissionUseCase = rbacUseCase.NewPermissionUseCase(permissionRepository)
	})
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permissionUseCase, nil
}

// AssignmentUseCase returns the assignment use case instance.
func (c *Container) AssignmentUseCase() (rbacUseCase.AssignmentUseCase, error) {
	var err error
	c.assignmentUseCaseInit.Do(func() {
		c.assignmentUseCase, err = c.initAssignmentUseCase()
		if err != nil {
			c.initErrors["assignmentUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["assignmentUseCase"]; exists {
		return nil, storedErr
	}
	return c.assignmentUseCase, nil
}

// AuthorizationUseCase returns the permission resolution use case instance.
func (c *Container) AuthorizationUseCase() (rbacUseCase.AuthorizationUseCase, error) {
	var err error
	c.authorizationUseCaseInit.Do(func() {
		c.authorizationUseCase, err = c.initAuthorizationUseCase()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["authorizationUseCase"]; exists {
		return nil, storedErr
	}
	return c.authorizationUseCase, nil
}

// BootstrapUseCase returns the administration scope seeding use case.
func (c *Container) BootstrapUseCase() (rbacUseCase.BootstrapUseCase, error) {
	var err error
	c.bootstrapUseCaseInit.Do(func() {
		c.bootstrapUseCase, err = c.initBootstrapUseCase()
		if err != nil {
			c.initErrors["bootstrapUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["bootstrapUseCase"]; exists {
		return nil, storedErr
	}
	return c.bootstrapUseCase, nil
}

func (c *Container) initUserUseCase() (rbacUseCase.UserUseCase, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hook dispatcher for user use case: %w", err)
	}
	return rbacUseCase.NewUserUseCase(userRepository, hooks), nil
}

func (c *Container) initGroupUseCase() (rbacUseCase.GroupUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for group use case: %w", err)
	}
	groupRepository, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for group use case: %w", err)
	}
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for group use case: %w", err)
	}
	return rbacUseCase.NewGroupUseCase(txManager, groupRepository, userRepository), nil
}

func (c *Container) initRoleUseCase() (rbacUseCase.RoleUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for role use case: %w", err)
	}
	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role use case: %w", err)
	}
	permissionRepository, err := c.PermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission repository for role use case: %w", err)
	}
	return rbacUseCase.NewRoleUseCase(txManager, roleRepository, permissionRepository), nil
}

func (c *Container) initAssignmentUseCase() (rbacUseCase.AssignmentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for assignment use case: %w", err)
	}
	assignmentRepository, err := c.AssignmentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment repository for assignment use case: %w", err)
	}
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for assignment use case: %w", err)
	}
	groupRepository, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for assignment use case: %w", err)
	}
	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for assignment use case: %w", err)
	}
	applicationRepository, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for assignment use case: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hook dispatcher for assignment use case: %w", err)
	}

	useCase := rbacUseCase.NewAssignmentUseCase(
		txManager,
		assignmentRepository,
		userRepository,
		groupRepository,
		roleRepository,
		applicationRepository,
		hooks,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for assignment use case: %w", err)
		}
		useCase = rbacUseCase.NewAssignmentUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

func (c *Container) initAuthorizationUseCase() (rbacUseCase.AuthorizationUseCase, error) {
	applicationRepository, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for authorization use case: %w", err)
	}
	groupRepository, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for authorization use case: %w", err)
	}
	assignmentRepository, err := c.AssignmentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment repository for authorization use case: %w", err)
	}
	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for authorization use case: %w", err)
	}

	useCase := rbacUseCase.NewAuthorizationUseCase(
		applicationRepository,
		groupRepository,
		assignmentRepository,
		roleRepository,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authorization use case: %w", err)
		}
		useCase = rbacUseCase.NewAuthorizationUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

func (c *Container) initBootstrapUseCase() (rbacUseCase.BootstrapUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for bootstrap use case: %w", err)
	}
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for bootstrap use case: %w", err)
	}
	applicationRepository, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for bootstrap use case: %w", err)
	}
	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for bootstrap use case: %w", err)
	}
	permissionRepository, err := c.PermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission repository for bootstrap use case: %w", err)
	}
	assignmentRepository, err := c.AssignmentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment repository for bootstrap use case: %w", err)
	}

	return rbacUseCase.NewBootstrapUseCase(
		txManager,
		userRepository,
		applicationRepository,
		roleRepository,
		permissionRepository,
		assignmentRepository,
	), nil
}

// rbacHandlers builds the directory and authorization HTTP handlers.
func (c *Container) rbacHandlers(handlers *iamHTTP.Handlers) error {
	users, err := c.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to get user use case for user handler: %w", err)
	}
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return fmt.Errorf("failed to get credential use case for user handler: %w", err)
	}
	groups, err := c.GroupUseCase()
	if err != nil {
		return fmt.Errorf("failed to get group use case for group handler: %w", err)
	}
	applications, err := c.ApplicationUseCase()
	if err != nil {
		return fmt.Errorf("failed to get application use case for application handler: %w", err)
	}
	roles, err := c.RoleUseCase()
	if err != nil {
		return fmt.Errorf("failed to get role use case for role handler: %w", err)
	}
	permissions, err := c.PermissionUseCase()
	if err != nil {
		return fmt.Errorf("failed to get permission use case for permission handler: %w", err)
	}
	assignments, err := c.AssignmentUseCase()
	if err != nil {
		return fmt.Errorf("failed to get assignment use case for assignment handler: %w", err)
	}
	authorization, err := c.AuthorizationUseCase()
	if err != nil {
		return fmt.Errorf("failed to get authorization use case for permission check handler: %w", err)
	}

	logger := c.Logger()
	handlers.User = rbacHTTP.NewUserHandler(users, credentials, logger)
	handlers.Group = rbacHTTP.NewGroupHandler(groups, logger)
	handlers.Application = rbacHTTP.NewApplicationHandler(applications, logger)
	handlers.Role = rbacHTTP.NewRoleHandler(roles, logger)
	handlers.Permission = rbacHTTP.NewPermissionHandler(permissions, logger)
	handlers.Assignment = rbacHTTP.NewAssignmentHandler(assignments, logger)
	handlers.PermissionCheck = rbacHTTP.NewPermissionCheckHandler(authorization, logger)
	return nil
}
