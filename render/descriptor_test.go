package render

import (
	"reflect"
	"testing"
)

func TestDescriptorSizes(t *testing.T) {
	var s DescriptorSizes
	s.AddBindings([]DescriptorSetLayoutBinding{
		{Binding: 0, Type: DescriptorAccelerationStructure, Count: 1, Stages: StageRaygen},
		{Binding: 1, Type: DescriptorStorageImage, Count: 1, Stages: StageRaygen},
		{Binding: 2, Type: DescriptorUniformBuffer, Count: 1, Stages: StageRaygen | StageMiss},
		{Binding: 3, Type: DescriptorStorageBuffer, Count: 2, Stages: StageClosestHit},
	})
	s.AddBindings([]DescriptorSetLayoutBinding{
		{Binding: 4, Type: DescriptorCombinedImageSampler, Count: 16, Stages: StageClosestHit},
		{Binding: 5, Type: DescriptorStorageBuffer, Count: 1, Stages: StageClosestHit},
	})

	want := []PoolSize{
		{DescriptorCombinedImageSampler, 16},
		{DescriptorStorageImage, 1},
		{DescriptorUniformBuffer, 1},
		{DescriptorStorageBuffer, 3},
		{DescriptorAccelerationStructure, 1},
	}
	have := s.PoolSizes()
	if !reflect.DeepEqual(have, want) {
		t.Fatalf("PoolSizes:\nhave %v\nwant %v", have, want)
	}
}

func TestDescriptorSizesEmpty(t *testing.T) {
	var s DescriptorSizes
	if have := s.PoolSizes(); have != nil {
		t.Fatalf("PoolSizes of zero value:\nhave %v\nwant nil", have)
	}
}
