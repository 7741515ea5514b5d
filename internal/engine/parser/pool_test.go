package parser

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(PythonLanguage())

	sp, err := pool.Get()
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, 1, pool.Stats())

	pool.Put(sp)
	assert.Equal(t, 0, pool.Stats())
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(PythonLanguage())
	assert.NotPanics(t, func() { pool.Put(nil) })
}

func TestParserPool_ParsesPython(t *testing.T) {
	pool := NewParserPool(PythonLanguage())

	sp, err := pool.Get()
	require.NoError(t, err)
	defer pool.Put(sp)

	tree := sp.Parse([]byte("class A:\n    pass\n"), nil)
	require.NotNil(t, tree)
	defer tree.Close()
	assert.Equal(t, "class_definition", tree.RootNode().NamedChild(0).Kind())
}

func TestParserPool_ConcurrentUse(t *testing.T) {
	pool := NewParserPool(PythonLanguage())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp, err := pool.Get()
			if !assert.NoError(t, err) {
				return
			}
			defer pool.Put(sp)
			tree := sp.Parse([]byte("def f():\n    return 1\n"), nil)
			if assert.NotNil(t, tree) {
				assert.False(t, tree.RootNode().HasError())
				tree.Close()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, pool.Stats())
}

func TestParserPool_OldestLease(t *testing.T) {
	pool := NewParserPool(PythonLanguage())
	assert.Zero(t, pool.OldestLease(time.Now()))

	sp, err := pool.Get()
	require.NoError(t, err)
	defer pool.Put(sp)
	assert.Greater(t, pool.OldestLease(time.Now().Add(time.Second)), time.Duration(0))
}
