package controllers

import (
	"github.com/323network/platform/app/repository"
)

// getRepos resolves the repository set. A variable so tests can swap in
// fakes without a database.
var getRepos = repository.GetGlobalRepositories
