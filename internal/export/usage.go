package export

import "github.com/iconvault/iconvault/internal/errors"

// UsageExample returns a code snippet showing how to consume the exported
// icon-library.json in the given framework: "react", "vue", or "vanilla".
func UsageExample(format string) (string, error) {
	switch format {
	case "react":
		return usageReact, nil
	case "vue":
		return usageVue, nil
	case "vanilla":
		return usageVanilla, nil
	default:
		return "", errors.Unsupported("unknown usage format: " + format)
	}
}

const usageReact = `import iconData from './icon-library.json';

// Single-color icon
function Icon({ name, color, size = 24 }) {
  const icon = iconData.icons[name];
  if (!icon) return null;

  return (
    <svg
      width={size}
      height={size}
      viewBox={` + "`0 0 ${icon.width} ${icon.height}`" + `}
      fill={color || icon.color}
    >
      <path d={icon.path} />
    </svg>
  );
}

// Multi-color icon: override individual color slots via the colors prop
function MultiColorIcon({ name, colors = {}, size = 24 }) {
  const icon = iconData.icons[name];
  if (!icon || !icon.multicolor) return null;

  const finalColors = { ...icon.colors, ...colors };

  return (
    <svg
      width={size}
      height={size}
      viewBox={` + "`0 0 ${icon.width} ${icon.height}`" + `}
    >
      {icon.paths.map((path, index) => (
        <path
          key={index}
          d={path.d}
          fill={finalColors[path.colorId] || path.color}
        />
      ))}
    </svg>
  );
}`

const usageVue = `<script setup>
import { computed } from 'vue';
import iconData from './icon-library.json';

const props = defineProps({
  name: { type: String, required: true },
  color: String,
  colors: { type: Object, default: () => ({}) },
  size: { type: Number, default: 24 },
});

const icon = computed(() => iconData.icons[props.name]);
const finalColors = computed(() => ({ ...icon.value?.colors, ...props.colors }));
</script>

<template>
  <svg
    v-if="icon && !icon.multicolor"
    :width="size"
    :height="size"
    :viewBox="` + "`0 0 ${icon.width} ${icon.height}`" + `"
    :fill="color || icon.color"
  >
    <path :d="icon.path" />
  </svg>

  <svg
    v-else-if="icon && icon.multicolor"
    :width="size"
    :height="size"
    :viewBox="` + "`0 0 ${icon.width} ${icon.height}`" + `"
  >
    <path
      v-for="(path, index) in icon.paths"
      :key="index"
      :d="path.d"
      :fill="finalColors[path.colorId] || path.color"
    />
  </svg>
</template>`

const usageVanilla = `// Load the exported document
const iconData = /* imported icon-library.json */;

// Single-color icon
function createIcon(name, color, size = 24) {
  const icon = iconData.icons[name];
  if (!icon) return null;

  const svg = document.createElementNS('http://www.w3.org/2000/svg', 'svg');
  svg.setAttribute('width', size);
  svg.setAttribute('height', size);
  svg.setAttribute('viewBox', ` + "`0 0 ${icon.width} ${icon.height}`" + `);

  const path = document.createElementNS('http://www.w3.org/2000/svg', 'path');
  path.setAttribute('d', icon.path);
  path.setAttribute('fill', color || icon.color);

  svg.appendChild(path);
  return svg;
}

// Multi-color icon
function createMultiColorIcon(name, colors = {}, size = 24) {
  const icon = iconData.icons[name];
  if (!icon || !icon.multicolor) return null;

  const finalColors = { ...icon.colors, ...colors };

  const svg = document.createElementNS('http://www.w3.org/2000/svg', 'svg');
  svg.setAttribute('width', size);
  svg.setAttribute('height', size);
  svg.setAttribute('viewBox', ` + "`0 0 ${icon.width} ${icon.height}`" + `);

  icon.paths.forEach(pathData => {
    const path = document.createElementNS('http://www.w3.org/2000/svg', 'path');
    path.setAttribute('d', pathData.d);
    path.setAttribute('fill', finalColors[pathData.colorId] || pathData.color);
    svg.appendChild(path);
  });

  return svg;
}`
